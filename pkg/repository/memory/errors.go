package memory

import "github.com/relink-lab/contactsync/pkg/domain/interfaces"

// Backend-local aliases of the repository sentinels
var (
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists
)
