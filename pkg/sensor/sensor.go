package sensor

import (
	"errors"
	"io/fs"
	"time"

	"periph.io/x/conn/v3/physic"
)

type Reading struct {
	Celsius   float64   `json:"celsius"`
	Timestamp time.Time `json:"timestamp"`
}

// Temperature converts the reading to periph's fixed point representation.
func (r Reading) Temperature() physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(r.Celsius*float64(physic.Celsius))
}

type Sensor interface {
	Read() (Reading, error)
	Close() error
}

// Kind classifies why a read failed.
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindPermission
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindPermission:
		return "permission-denied"
	case KindParse:
		return "parse-failure"
	default:
		return "other"
	}
}

// ReadError is returned by every sensor backend when a reading could not be
// produced. Path names the device the read was attempted against.
type ReadError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *ReadError) Unwrap() error { return e.Err }

// classify builds a ReadError from a filesystem error.
func classify(path string, err error) *ReadError {
	kind := KindOther
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermission
	}
	return &ReadError{Kind: kind, Path: path, Err: err}
}

// KindOf reports the Kind of err. Errors that are not a *ReadError are KindOther.
func KindOf(err error) Kind {
	var re *ReadError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindOther
}
