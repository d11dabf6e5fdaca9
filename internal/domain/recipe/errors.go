package recipe

import "errors"

// Domain errors for recipe generation
var (
	ErrNoRecipes   = errors.New("suggestion contains no recipes")
	ErrUnknownMode = errors.New("unknown cooking mode")
)
