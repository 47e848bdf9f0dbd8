// Package gemini implements the embedding.Embedder and embedding.Classifier
// interfaces using Google's Gemini API via the google.golang.org/genai
// client. Both oracles share one client but remain independent capabilities
// so either can be swapped or mocked on its own.
package gemini
