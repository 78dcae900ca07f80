// Package ratelimit limits requests per client over fixed windows.
//
// A Limiter evaluates every configured Window on every request. Each window
// keeps a counter and the time of the last allowed request per identity:
//
//   - no previous request: the counter starts at 1
//   - last allowed request within the interval: the counter is incremented,
//     or the request is rejected once it has reached the maximum
//   - otherwise the counter resets to 1
//
// A request is allowed only when every window allows it. Rejected requests
// do not move the window. Store failures are logged and the request is
// allowed.
package ratelimit
