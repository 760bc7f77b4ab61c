package main

import "github.com/google/uuid"

// uuidSuffix keeps instance ids unique when several replicas share a hostname.
func uuidSuffix() string {
	return uuid.New().String()[:8]
}
