// Package permission derives access decisions from decoded credential claims.
//
// # Policies
//
//   - [ExcludeRoles]: grants every asserted role except the excluded ones. The console's
//     default is ExcludeRoles("USER").
//   - [AllowRoles]: grants only roles registered in a [RoleSet].
//
// Both are pure and safe for concurrent use once constructed.
//
// # What this package must NOT do
//
//   - Decode or verify credentials (jwt package).
//   - Access storage or the network.
package permission
