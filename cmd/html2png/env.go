package main

import (
	"io"
	"os"
	"time"

	html2png "github.com/alnah/go-html2png"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the engine factory.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	NewEngine func(name string) (html2png.Engine, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewEngine: html2png.EngineByName,
	}
}
