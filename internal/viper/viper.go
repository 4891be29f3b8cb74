// Package viper holds the scout-action instance of Viper. Inputs, flags and
// the optional config file all resolve through it, so nothing in the action
// touches Viper's global instance.
package viper

import (
	"sync"

	spfviper "github.com/spf13/viper"
)

var (
	instance *spfviper.Viper
	mu       = sync.Mutex{}
)

// Instance returns the action's Viper, creating it on first use.
func Instance() *spfviper.Viper {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = spfviper.New()
	}
	return instance
}

// Reset drops the current instance. The next call to Instance starts
// from an empty configuration.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
}
