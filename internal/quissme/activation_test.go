package quissme

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivate(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	a, err := s.Activate("passion_1", PartnerA, testNow, DefaultActivationLimits)
	require.NoError(t, err)
	assert.Equal(t, Activation{QuizID: "passion_1", Partner: PartnerA, ActivatedAt: testNow}, a)

	got, ok := s.Activation("passion_1")
	require.True(t, ok)
	assert.Equal(t, a, got)

	_, ok = s.Activation("passion_2")
	assert.False(t, ok)

	assert.Equal(t, Seeds{
		WeeklyUsed:     1,
		SeedsRemaining: 2,
		ActiveCount:    1,
		SlotsRemaining: 2,
		CanActivate:    true,
	}, s.Seeds(PartnerA, testNow, DefaultActivationLimits))
	assert.Equal(t, 3, s.Seeds(PartnerB, testNow, DefaultActivationLimits).SeedsRemaining,
		"weekly activations are counted per partner")
}

func TestActivateRejectsOpenQuiz(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	_, err := s.Activate("passion_1", PartnerA, testNow, DefaultActivationLimits)
	require.NoError(t, err)
	_, err = s.Activate("passion_1", PartnerB, testNow, DefaultActivationLimits)
	require.ErrorIs(t, err, ErrAlreadyActive)

	_, err = s.SubmitAnswer(answer("passion_2", PartnerA, 1))
	require.NoError(t, err)
	_, err = s.Activate("passion_2", PartnerA, testNow, DefaultActivationLimits)
	require.ErrorIs(t, err, ErrAlreadyActive)

	_, err = s.SubmitAnswer(answer("passion_1", PartnerA, 1))
	require.NoError(t, err)
	_, err = s.SubmitAnswer(answer("passion_1", PartnerB, 1))
	require.NoError(t, err)
	_, err = s.Activate("passion_1", PartnerA, testNow, DefaultActivationLimits)
	require.ErrorIs(t, err, ErrDuplicateAnswer)
}

func TestActivateValidation(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	_, err := s.Activate("nope", PartnerA, testNow, DefaultActivationLimits)
	require.ErrorIs(t, err, ErrUnknownQuiz)

	_, err = s.Activate("passion_1", Partner("C"), testNow, DefaultActivationLimits)
	require.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestActivateWeeklyLimit(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))
	limits := ActivationLimits{WeeklyPerPartner: 3, MaxActive: 10}

	for i, id := range []string{"passion_1", "passion_2", "passion_3"} {
		_, err := s.Activate(id, PartnerA, testNow.Add(time.Duration(i)*time.Hour), limits)
		require.NoError(t, err)
	}

	_, err := s.Activate("passion_4", PartnerA, testNow.Add(6*24*time.Hour), limits)
	require.ErrorIs(t, err, ErrActivationLimit)
	assert.False(t, s.Seeds(PartnerA, testNow.Add(6*24*time.Hour), limits).CanActivate)

	_, err = s.Activate("passion_4", PartnerB, testNow, limits)
	require.NoError(t, err, "partner B has a separate allowance")

	later := testNow.Add(7 * 24 * time.Hour)
	assert.Equal(t, 3, s.Seeds(PartnerA, later, limits).SeedsRemaining, "window restarts after seven days")
	_, err = s.Activate("passion_5", PartnerA, later, limits)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Seeds(PartnerA, later, limits).SeedsRemaining)
}

func TestActivateActiveSlots(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))
	limits := ActivationLimits{WeeklyPerPartner: 10, MaxActive: 2}

	_, err := s.Activate("passion_1", PartnerA, testNow, limits)
	require.NoError(t, err)
	_, err = s.Activate("passion_2", PartnerB, testNow, limits)
	require.NoError(t, err)

	_, err = s.Activate("passion_3", PartnerA, testNow, limits)
	require.ErrorIs(t, err, ErrActivationLimit)
	assert.Equal(t, 0, s.Seeds(PartnerA, testNow, limits).SlotsRemaining)

	_, err = s.SubmitAnswer(answer("passion_1", PartnerA, 0))
	require.NoError(t, err)
	_, err = s.SubmitAnswer(answer("passion_1", PartnerB, 0))
	require.NoError(t, err)

	_, err = s.Activate("passion_3", PartnerA, testNow, limits)
	require.NoError(t, err, "a scored quiz frees its slot")
}

func TestResetClusterClearsActivations(t *testing.T) {
	s := NewQuizState(newTestCatalog(t))

	_, err := s.Activate("passion_1", PartnerA, testNow, DefaultActivationLimits)
	require.NoError(t, err)
	_, err = s.Activate("stability_1", PartnerA, testNow, DefaultActivationLimits)
	require.NoError(t, err)

	s.ResetCluster(ClusterPassion)

	_, ok := s.Activation("passion_1")
	assert.False(t, ok)
	_, ok = s.Activation("stability_1")
	assert.True(t, ok)
	assert.Equal(t, 2, s.Seeds(PartnerA, testNow, DefaultActivationLimits).WeeklyUsed,
		"a reset does not refund weekly activations")
}

func TestActivationSnapshotRoundTrip(t *testing.T) {
	c := newTestCatalog(t)
	s := NewQuizState(c)

	_, err := s.Activate("passion_2", PartnerB, testNow, DefaultActivationLimits)
	require.NoError(t, err)
	_, err = s.Activate("passion_1", PartnerA, testNow, DefaultActivationLimits)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Activations, 2)
	assert.Equal(t, "passion_1", snap.Activations[0].QuizID, "activations are stored in catalog order")

	restored, err := RestoreQuizState(c, snap)
	require.NoError(t, err)
	assert.Equal(t, s.Seeds(PartnerA, testNow, DefaultActivationLimits), restored.Seeds(PartnerA, testNow, DefaultActivationLimits))
	assert.Equal(t, s.Seeds(PartnerB, testNow, DefaultActivationLimits), restored.Seeds(PartnerB, testNow, DefaultActivationLimits))

	bad := snap
	bad.Activations = append(bad.Activations, Activation{QuizID: "passion_1", Partner: PartnerB})
	_, err = RestoreQuizState(c, bad)
	require.ErrorIs(t, err, ErrAlreadyActive)
}
