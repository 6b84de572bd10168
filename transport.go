package gde060ba

// Transport moves drive data to the panel's source and gate drivers.
//
// Calls are blocking: SendRow returns once the row has been latched.
type Transport interface {
	// PowerOn engages the panel supply rails. Every successful PowerOn is
	// followed by exactly one PowerOff.
	PowerOn() error
	// PowerOff disengages the panel supply rails.
	PowerOff() error
	// StartScan begins the row scan of one frame.
	StartScan() error
	// SendRow transmits one row of drive bytes for a panel of width pixels.
	SendRow(row []byte, width int) error
}

// errorHandler is a wrapper for error management.
//
// Once a call failed, all further bus traffic is skipped, except for the
// PowerOff matching a successful PowerOn.
type errorHandler struct {
	t       Transport
	powered bool
	err     error
}

func (eh *errorHandler) powerOn() {
	if eh.err != nil {
		return
	}
	eh.err = eh.t.PowerOn()
	eh.powered = eh.err == nil
}

func (eh *errorHandler) powerOff() {
	if !eh.powered {
		return
	}
	eh.powered = false
	if err := eh.t.PowerOff(); eh.err == nil {
		eh.err = err
	}
}

func (eh *errorHandler) startScan() {
	if eh.err != nil {
		return
	}
	eh.err = eh.t.StartScan()
}

func (eh *errorHandler) sendRow(row []byte, width int) {
	if eh.err != nil {
		return
	}
	eh.err = eh.t.SendRow(row, width)
}
