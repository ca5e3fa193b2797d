package consts

const (
	AuthRevokedKey = "auth:revoked:"
)
