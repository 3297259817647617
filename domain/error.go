package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrSessionCacheMiss = errors.New("session not found in cache")
)
