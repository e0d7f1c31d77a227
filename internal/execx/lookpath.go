package execx

import "github.com/cli/safeexec"

// defaultLookPath resolves binaries without the working-directory lookup
// that plain exec.LookPath performs on some platforms.
func defaultLookPath(name string) (string, error) {
	return safeexec.LookPath(name)
}
