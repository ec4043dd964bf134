// Package volume applies volume changes to the Spotify player.
//
// Two backends exist. The Web API backend calls PUT /v1/me/player/volume
// with the user's access token; a 401 answer triggers one token refresh and
// one retry, every other failure is reported as-is. The local backend sets the
// volume of the player's audio session through a SessionController, on Linux
// PulseController driving pactl.
//
// Dispatcher.Apply never returns an error: every outcome, including
// configuration and network problems, becomes a Result with a message for
// the user.
package volume
