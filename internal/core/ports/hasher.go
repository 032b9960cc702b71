package ports

// Hasher computes content digests used to skip identical writes.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashBytes returns the digest of data.
	HashBytes(data []byte) uint64
	// HashFile returns the digest of the file content at path.
	HashFile(path string) (uint64, error)
}
