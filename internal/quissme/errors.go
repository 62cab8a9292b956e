package quissme

import "errors"

var (
	ErrUnknownQuiz       = errors.New("unknown quiz")
	ErrUnknownCluster    = errors.New("unknown cluster")
	ErrEmptyInput        = errors.New("no quiz results")
	ErrMixedCluster      = errors.New("quiz results span multiple clusters")
	ErrInvalidZone       = errors.New("invalid zone")
	ErrInvalidAnswer     = errors.New("invalid answer")
	ErrDuplicateAnswer   = errors.New("quiz already scored for this cycle")
	ErrClusterIncomplete = errors.New("cluster not complete")
	ErrInvalidCatalog    = errors.New("invalid catalog")
	ErrAlreadyActive     = errors.New("quiz already active")
	ErrNotActivated      = errors.New("quiz not activated")
	ErrActivationLimit   = errors.New("activation limit reached")
)
