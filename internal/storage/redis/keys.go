package redis

import "fmt"

// Key prefix for all server data
const keyPrefix = "mindroll"

// userKey returns the Redis key for a User
func userKey(username string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, username)
}

// tokenKey returns the Redis key for a Token
func tokenKey(signature string) string {
	return fmt.Sprintf("%s:token:%s", keyPrefix, signature)
}
