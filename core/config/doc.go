// Package config loads the application configuration.
//
// Values come from struct tag defaults, a .env file and the environment,
// through Viper. Nested keys map to upper-case variables joined by '_'
// (api.base_url is API_BASE_URL). A few flat names used by existing
// deployments are accepted as aliases, e.g. MISSING_TABLE_API_TOKEN.
//
// Sections:
//   - Server: HTTP port, API key, timeouts
//   - Storage: MinIO endpoint, credentials and bucket
//   - Log: level, format and rotating log file
//   - Database: run history database
//   - API: remote match-tracking API, token and retry policy
//   - Cache: team cache
//   - Workflow: stage retries, scraper source and default window
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
