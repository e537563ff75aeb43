package dataset

import "github.com/pkg/errors"

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("column already exists")
	ErrNoTarget        = errors.New("target variable not set")
	ErrNotNumerical    = errors.New("column is not numerical")
	ErrNotCategorical  = errors.New("column is not categorical")
	ErrNoNumerical     = errors.New("no numerical features")
	ErrMissingValues   = errors.New("missing values present")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyDataset    = errors.New("empty dataset")
)
