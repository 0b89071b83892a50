// Package apiclient is the HTTP client for the remote match-tracking API.
//
// Every call goes through Client.Request, which:
//   - adds the "Authorization: Bearer <token>" header (and fails with a
//     ConfigurationError when no token is configured),
//   - fails immediately on 4xx responses with an *APIError,
//   - retries 5xx responses and network failures with the exponential policy
//     from core/retry, surfacing an *APIError (status 0 for network failures)
//     once the policy is exhausted,
//   - records one CallMetric per attempt through the configured Recorder.
//
// Typed helpers (ListTeams, CreateMatch, UpdateMatchScore, ...) decode each
// endpoint into an explicit struct and validate it before returning.
//
// # Usage
//
//	client, err := apiclient.New(cfg.API, apiclient.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	teams, err := client.ListTeams(ctx)
package apiclient
