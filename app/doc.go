// Package app assembles voicescribe: configuration loading and validation,
// construction of the Telegram client, converter, speech provider and usage
// store, and their registration with the component lifecycle.
package app
