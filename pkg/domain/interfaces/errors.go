package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by repositories when a requested entity does not
// exist, regardless of backend
var ErrNotFound = goerr.New("not found")

// ErrAlreadyExists is returned when creating an entity whose ID is taken
var ErrAlreadyExists = goerr.New("already exists")
