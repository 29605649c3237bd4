// Package storage keeps uploaded files in object storage.
//
// [S3] talks to any S3-compatible service through aws-sdk-go-v2. [Dir]
// stores files under a local directory for development, and [Memory] backs
// tests. All three implement [Storage].
//
//	key := storage.NewKey("covers", "image/png") // covers/01J....png
//	err := store.Put(ctx, key, file, header.Size, "image/png")
package storage
