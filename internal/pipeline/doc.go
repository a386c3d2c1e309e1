// Package pipeline turns a configuration and an invocation into the task
// graph that builds the project: sprite generation, clearing the output
// root, the asset tasks, manifest cleanup and, in development, watch+serve.
package pipeline
