// Package constants holds string constants shared by configuration and infrastructure.
package constants

// Environment names.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub providers.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Record store providers.
const (
	StorageProviderBlob     = "blob"
	StorageProviderPostgres = "postgres"
)

// Generation service providers.
const (
	GenAIProviderGoogleAI = "googleai"
	GenAIProviderOpenAI   = "openai"
)
