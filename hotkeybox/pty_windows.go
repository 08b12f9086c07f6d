package hotkeybox

import "errors"

func OpenPTY() (*SerialConnection, error) {
	return nil, errors.New("pseudo-terminals are not supported on windows")
}
