// Package jwt turns bearer credentials into [Claims].
//
// The default [UnverifiedDecoder] only checks that a credential is well formed: three
// dot-separated segments whose middle segment is base64url-encoded JSON. It never checks the
// signature, so a successful decode says nothing about authenticity. [VerifyingDecoder] is a
// drop-in [Decoder] for deployments that hold the issuer's key.
//
// # What this package must NOT do
//
//   - Make access decisions (that is the permission package).
//   - Persist credentials or perform I/O.
package jwt
