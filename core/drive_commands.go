package core

import "rcvip/protocol"

// InitDriveCommands registers the drive commands and responses
func InitDriveCommands() {
	// Control record: throttle and steering angle, fixed-point x10000.
	// Any throttle outside [0, 1] is the no-signal stop request.
	RegisterCommand("car_control", "throttle=%i steer=%i", handleCarControl)

	// Query the drive state
	RegisterCommand("get_drive_status", "", handleGetDriveStatus)

	RegisterResponse("drive_status", "state=%c supervisor=%c threshold=%c duty=%i trips=%u")
	RegisterResponse("car_sensors", "voltage_mv=%i ax=%i ay=%i az=%i gx=%i gy=%i gz=%i failsafe=%c")
}

// NoSignalThrottle is the throttle value hosts send to request a stop
const NoSignalThrottle = -1.0

// handleCarControl feeds a control record to the drive
// Format: car_control throttle=%i steer=%i
func handleCarControl(data *[]byte) error {
	throttle, err := protocol.DecodeFixed(data)
	if err != nil {
		return err
	}

	steer, err := protocol.DecodeFixed(data)
	if err != nil {
		return err
	}

	drive := GetMotorDrive()
	if drive == nil {
		return ErrDriveNotInitialized
	}
	drive.HandleCarControl(Millis(), throttle, steer)
	return nil
}

// handleGetDriveStatus reports the drive state
// Format: get_drive_status
func handleGetDriveStatus(data *[]byte) error {
	drive := GetMotorDrive()
	if drive == nil {
		return ErrDriveNotInitialized
	}
	st := drive.Status()
	return SendResponse("drive_status",
		int32(st.State),
		int32(st.Supervisor),
		int32(st.Threshold),
		protocol.ToFixed(st.Duty),
		int32(st.Trips))
}
