package consts

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

const (
	MimePrefixImage = "image/"
	MimePrefixVideo = "video/"
)

const (
	// MomentTTL is fixed at creation and never extended.
	MomentTTL = 24 * 60 * 60 // seconds

	DefaultMomentListLimit = 20
	MaxMomentListLimit     = 100
)

const (
	RetireReasonOwnerDelete = "owner_delete"
	RetireReasonExpiry      = "expiry"
)
