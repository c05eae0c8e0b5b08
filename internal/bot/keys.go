package bot

// Callback uniques. Payload (after '|') noted where used.
const (
	cbStartRegistration = "start_registration"
	cbCancelDecision    = "cancel_decision"
	cbStepBack          = "reg_back"
	cbEditStep          = "edit_step" // payload: step wire name
	cbConfirm           = "confirm_registration"
	cbCancelFlow        = "cancel_flow"
	cbEditProfile       = "edit_profile"
	cbChargeCredit      = "charge_credit"
	cbVerifyPayment     = "verify_payment" // payload: payment ref
	cbCancelCharge      = "cancel_charge"
)

// registrationCallbacks are the callback keys an unregistered user may
// press; the access gate routes them into the flow instead of
// blocking.
var registrationCallbacks = map[string]bool{
	cbStartRegistration: true,
	cbCancelDecision:    true,
	cbStepBack:          true,
	cbEditStep:          true,
	cbConfirm:           true,
	cbCancelFlow:        true,
}
