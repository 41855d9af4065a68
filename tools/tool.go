// Package tools holds the external service clients the worker agents call,
// plus the shared configuration they embed.
package tools

// ITool is the minimal surface every tool exposes.
type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
}
