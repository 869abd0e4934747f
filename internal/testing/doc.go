// Package testing provides shared test doubles for the console's
// collaborators.
//
//   - MockBackend: product database API
//   - MockRegisterIO: device register transport
//   - MockPrompter: operator input
//
// Usage:
//
//	backend := &testing.MockBackend{}
//	backend.On("Login", mock.Anything, "operator", "secret").Return("token", nil)
package testing
