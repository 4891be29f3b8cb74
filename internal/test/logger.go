// Package test has helpers shared by the action's test suites.
package test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// NewTestLoggerContext returns ctx carrying a logger that prints every
// entry, at any verbosity, to the GinkgoWriter.
func NewTestLoggerContext(ctx context.Context) context.Context {
	log := funcr.New(func(prefix, args string) {
		GinkgoWriter.Println(prefix, args)
	}, funcr.Options{Verbosity: 2})
	return logr.NewContext(ctx, log)
}
