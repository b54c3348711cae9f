// Package session holds the three-tier identity cache: a per-Cache memory
// tier, the process-wide Global tier and the persistent key/value store.
//
// The persistent tier stores one logical group of keys (KeyUserInfo,
// KeyOpenID, KeyToken and KeyLoggedIn). Readers accept the group only when
// the flag is set, the openid is non-empty and the profile blob decodes, so
// an interrupted write or clear never surfaces as a session.
package session
