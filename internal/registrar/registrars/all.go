// Package registrars imports all registrar packages to trigger their
// init() registration.
package registrars

import (
	_ "github.com/yuriy-kovalchuk/yk-dns-bulk/internal/registrar/porkbun"
)
