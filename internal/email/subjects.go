package email

const (
	inviteTitle             = "Welcome aboard"
	subjectPartnerInviteFmt = "%s, your partner portal is ready"
)
