// Package oauth implements the OAuth 2.0 Authorization Code flow used to
// control playback volume through the Spotify Web API.
//
// # Flow
//
//  1. The user configures a client ID and secret (Credentials)
//  2. Session.Login binds a local redirect listener (CallbackServer)
//  3. The authorization URL is opened in the browser, strictly after the bind
//  4. The provider redirects to http://localhost:8888/callback?code=...
//  5. Client.ExchangeCode trades the code for an access/refresh token pair
//  6. The pair is persisted by Store and reloaded on the next start
//
// When the Web API answers 401, callers use Client.Refresh once and retry.
//
// # Components
//
//   - Store: JSON files for credentials and tokens, written atomically with 0600 permissions
//   - CallbackServer: one-shot local HTTP listener returning an AuthorizationResult
//   - Client: authorization URL, code exchange, refresh and logout over golang.org/x/oauth2
//   - Session: login orchestration with exactly one LoginResult per attempt
//   - TokenWatcher: reloads tokens changed by another spotivol process
//
// # Security
//
// Token and secret values are never logged. Security-relevant operations are
// recorded with logging.Audit using action and outcome only. The callback
// pages are served with nosniff, DENY framing, a restrictive CSP, no-referrer
// and no-store headers.
//
// # Concurrency
//
// Client serializes all token mutations behind one operation lock and hands
// out TokenSet snapshots to readers. Concurrent Refresh calls share one
// provider request. Logout waits for an in-flight refresh so a refreshed
// token can never outlive the logout.
package oauth
