// Package mcpserver exposes spotivol as a Model Context Protocol server.
//
// The server speaks MCP over stdio and offers tools to change the volume,
// apply a profile, list profiles and report the login state. It shares the
// application's oauth.Client with every other front end, so a tool call made
// while the access token is expired goes through the same single refresh and
// retry as a volume change from the command line.
package mcpserver
