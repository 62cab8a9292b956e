package quissme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAnswerPairs(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	r, err := s.SubmitAnswer(answer("passion_1", PartnerA, 2))
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = s.SubmitAnswer(answer("passion_1", PartnerB, 2))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, ZoneFlow, r.Zone)
	assert.Equal(t, ClusterPassion, r.Cluster)
	assert.Equal(t, "passion_1 flow step", r.Tokens.MicroStep)
	assert.Equal(t, []string{"passion_1"}, s.CompletedQuizzes())
}

func TestSubmitAnswerReplacesPendingAnswer(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	_, err := s.SubmitAnswer(answer("passion_1", PartnerA, 0))
	require.NoError(t, err)
	_, err = s.SubmitAnswer(answer("passion_1", PartnerA, 4))
	require.NoError(t, err)

	assert.Equal(t, Progress{A: 1}, s.ClusterProgress(ClusterPassion))

	r, err := s.SubmitAnswer(answer("passion_1", PartnerB, 4))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, ZoneFlow, r.Zone, "second answer from A should win")
}

func TestSubmitAnswerAfterScoring(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	_, err := s.SubmitAnswer(answer("passion_1", PartnerA, 0))
	require.NoError(t, err)
	_, err = s.SubmitAnswer(answer("passion_1", PartnerB, 4))
	require.NoError(t, err)

	_, err = s.SubmitAnswer(answer("passion_1", PartnerA, 1))
	require.ErrorIs(t, err, ErrDuplicateAnswer)
	assert.Equal(t, Progress{A: 1, B: 1}, s.ClusterProgress(ClusterPassion))
}

func TestSubmitAnswerValidation(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	_, err := s.SubmitAnswer(answer("nope", PartnerA, 0))
	require.ErrorIs(t, err, ErrUnknownQuiz)

	_, err = s.SubmitAnswer(answer("passion_1", "C", 0))
	require.ErrorIs(t, err, ErrInvalidAnswer)

	_, err = s.SubmitAnswer(answer("passion_1", PartnerA, 5))
	require.ErrorIs(t, err, ErrInvalidAnswer)

	assert.Equal(t, Progress{}, s.ClusterProgress(ClusterPassion))
}

func TestClusterCompletion(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	for i, id := range []string{"passion_1", "passion_2", "passion_3", "passion_4", "passion_5"} {
		assert.False(t, s.IsClusterComplete(ClusterPassion))
		_, err := s.SubmitAnswer(answer(id, PartnerA, 2))
		require.NoError(t, err)
		assert.False(t, s.IsClusterComplete(ClusterPassion))
		_, err = s.SubmitAnswer(answer(id, PartnerB, 2))
		require.NoError(t, err)
		assert.Equal(t, Progress{A: i + 1, B: i + 1}, s.ClusterProgress(ClusterPassion))
	}
	assert.True(t, s.IsClusterComplete(ClusterPassion))
	assert.False(t, s.IsClusterComplete(ClusterStability))
	assert.Len(t, s.ClusterResults(ClusterPassion), 5)
	assert.Empty(t, s.ClusterResults(ClusterStability))
}

func TestClusterCompletionUsesCatalogSize(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	// The test catalog's future cluster holds two quizzes.
	for _, id := range []string{"wide", "paired"} {
		_, err := s.SubmitAnswer(answer(id, PartnerA, 0))
		require.NoError(t, err)
		_, err = s.SubmitAnswer(answer(id, PartnerB, 0))
		require.NoError(t, err)
	}
	assert.True(t, s.IsClusterComplete(ClusterFuture))
}

func TestQuizStatus(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	status := func(who Partner) QuizStatus {
		t.Helper()
		st, err := s.QuizStatus("passion_1", who)
		require.NoError(t, err)
		return st
	}

	assert.Equal(t, StatusAvailable, status(PartnerA))

	_, err := s.SubmitAnswer(answer("passion_1", PartnerA, 1))
	require.NoError(t, err)
	assert.Equal(t, StatusWaitingOnPartner, status(PartnerA))
	assert.Equal(t, StatusPartnerAnswered, status(PartnerB))

	_, err = s.SubmitAnswer(answer("passion_1", PartnerB, 1))
	require.NoError(t, err)
	assert.Equal(t, StatusReadyToReveal, status(PartnerA))
	assert.Equal(t, StatusReadyToReveal, status(PartnerB))

	_, err = s.QuizStatus("nope", PartnerA)
	require.ErrorIs(t, err, ErrUnknownQuiz)
}

func TestResetCluster(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	for _, id := range []string{"passion_1", "stability_1"} {
		_, err := s.SubmitAnswer(answer(id, PartnerA, 0))
		require.NoError(t, err)
		_, err = s.SubmitAnswer(answer(id, PartnerB, 0))
		require.NoError(t, err)
	}

	s.ResetCluster(ClusterPassion)

	assert.Equal(t, Progress{}, s.ClusterProgress(ClusterPassion))
	assert.Equal(t, Progress{A: 1, B: 1}, s.ClusterProgress(ClusterStability))
	assert.Equal(t, []string{"stability_1"}, s.CompletedQuizzes())

	_, err := s.SubmitAnswer(answer("passion_1", PartnerA, 3))
	require.NoError(t, err, "replay after reset")
}

func TestSnapshotRestore(t *testing.T) {
	c := newTestCatalog(t)
	s := NewQuizState(c)

	_, err := s.SubmitAnswer(answer("passion_2", PartnerA, 0))
	require.NoError(t, err)
	_, err = s.SubmitAnswer(answer("passion_2", PartnerB, 4))
	require.NoError(t, err)
	_, err = s.SubmitAnswer(answer("passion_1", PartnerB, 2))
	require.NoError(t, err)

	restored, err := RestoreQuizState(c, s.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Equal(t, s.ClusterProgress(ClusterPassion), restored.ClusterProgress(ClusterPassion))
	assert.Equal(t, []string{"passion_2"}, restored.CompletedQuizzes())

	st, err := restored.QuizStatus("passion_1", PartnerA)
	require.NoError(t, err)
	assert.Equal(t, StatusPartnerAnswered, st)
}

func TestRestoreRejectsBadSnapshot(t *testing.T) {
	c := newTestCatalog(t)

	_, err := RestoreQuizState(c, StateSnapshot{Answers: []Answer{answer("nope", PartnerA, 0)}})
	require.ErrorIs(t, err, ErrUnknownQuiz)

	_, err = RestoreQuizState(c, StateSnapshot{Answers: []Answer{answer("passion_1", PartnerA, 9)}})
	require.ErrorIs(t, err, ErrInvalidAnswer)

	_, err = RestoreQuizState(c, StateSnapshot{
		Answers: []Answer{answer("passion_1", PartnerA, 0)},
		Results: []QuizResult{result("passion_1", ClusterPassion, ZoneFlow)},
	})
	require.Error(t, err)
}

func TestPartnerOther(t *testing.T) {
	assert.Equal(t, PartnerB, PartnerA.Other())
	assert.Equal(t, PartnerA, PartnerB.Other())
}
