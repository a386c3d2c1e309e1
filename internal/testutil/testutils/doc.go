// Package testutils holds fixtures shared by package tests: project trees on
// disk, output assertions and throwaway git repositories.
package testutils
