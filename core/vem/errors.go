package vem

import "errors"

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrCorpusFormat    = errors.New("malformed corpus")
	ErrModelFormat     = errors.New("malformed model")
	ErrSettings        = errors.New("invalid settings")
	ErrTermOutOfRange  = errors.New("term id out of model vocabulary")
	ErrAlphaDiverged   = errors.New("alpha optimization diverged")
	ErrNaNLikelihood   = errors.New("likelihood is NaN")
	ErrEmptyDoc        = errors.New("interpret empty document")
)
