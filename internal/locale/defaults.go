package locale

// Message keys shared by the registry and the executor.
const (
	KeyNoImplement   = "NO_IMPLEMENT"
	KeyRegisterError = "CMD_REG_ERR"
	KeyArgumentCount = "NUM_ARGS_ERR"
	KeyIllegalArgs   = "ILL_ARGS_ERR"
	KeyPermission    = "PERMS_ERR"
	KeyNoConsole     = "NO_CONSOLE"
	KeyNoCommand     = "NO_CMD"
	KeyInstanceError = "CMD_NULL_ERR"
	KeyUsage         = "USAGE"
)

func defaultMessages() map[string]string {
	return map[string]string{
		KeyNoImplement:   "Base class does not implement.",
		KeyRegisterError: "Failed to register command. Perhaps it is already registered? Command-ID: ",
		KeyArgumentCount: "An incorrect number of arguments was specified.",
		KeyIllegalArgs:   "An illegal argument was passed into the command.",
		KeyPermission:    "You do not have permission to execute this command.",
		KeyNoConsole:     "This command cannot be executed from Console.",
		KeyNoCommand:     "An invalid command was specified.",
		KeyInstanceError: "An error occurred while generating a Command Instance. The command has been aborted.",
		KeyUsage:         "Usage: ",
	}
}
