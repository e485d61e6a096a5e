package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a collector session has not been started.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuestionnaireNotFound indicates the questionnaire layout could not be loaded.
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
	// ErrQuestionNotFound indicates an answer named a (category, question) pair the questionnaire does not define.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidQuestionnaire is returned by Questionnaire.Validate.
	ErrInvalidQuestionnaire = errors.New("invalid questionnaire")
	// ErrUnknownPlatform indicates a share target that is not supported.
	ErrUnknownPlatform = errors.New("unknown share platform")
)
