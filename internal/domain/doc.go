// Package domain contains the core business entities of the BookMate
// marketplace: users, the books they list, and the borrow/exchange requests
// exchanged between them. It represents the heart of the system, independent
// of any specific infrastructure or delivery mechanism.
package domain
