package fed

// BackendKey identifies a server process for out-of-band cancel requests.
type BackendKey struct {
	ProcessID int32
	SecretKey int32
}
