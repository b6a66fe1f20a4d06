// issue_token emite un JWT firmado con JWT_SECRET para operar la API del libro
// (no hay endpoint de login: los usuarios se administran fuera de este servicio).
//
// Uso: go run ./cmd/issue_token -user <uuid> -role bodeguero [-minutes 60]
// Roles: admin | bodeguero escriben movimientos; consulta solo lee.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

var validRoles = map[string]bool{"admin": true, "bodeguero": true, "consulta": true}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	userID := flag.String("user", "", "id del usuario (queda como staff de los movimientos)")
	role := flag.String("role", "consulta", "admin | bodeguero | consulta")
	minutes := flag.Int("minutes", cfg.JWT.Expiration, "vigencia en minutos")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "Falta -user")
		os.Exit(2)
	}
	if !validRoles[*role] {
		fmt.Fprintf(os.Stderr, "Rol %q no válido\n", *role)
		os.Exit(2)
	}

	token, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, *minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Firmar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
