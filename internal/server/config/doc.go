// Package config loads runtime configuration for the focustank server.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Environment variables prefixed FOCUSTANK_SERVER_, after reading a
//     .env file when one is present.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-w string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-k string   Redis address; empty keeps the cache in process
//	-u string   S3 user
//	-p string   S3 password
//	-b string   S3 bucket; empty disables the archive
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-l string   log level (debug, info, warn, error)
package config
