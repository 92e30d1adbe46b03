// devtoken firma un JWT de desarrollo con el secreto y emisor de la configuración.
//
// Uso: go run ./cmd/devtoken <tenant_id> <user_id> <rol>
// Roles: owner, admin, manager, cashier. La vigencia sale de JWT_EXPIRATION_MINUTES.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/pkg/config"
	"github.com/jhoicas/pos-ledger/pkg/jwt"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "Uso: devtoken <tenant_id> <user_id> <rol>")
		os.Exit(2)
	}
	id := jwt.Identity{TenantID: os.Args[1], UserID: os.Args[2], Role: os.Args[3]}
	if !entity.ValidRole(id.Role) {
		fmt.Fprintf(os.Stderr, "Rol desconocido: %s\n", id.Role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Sign(cfg.JWT.Secret, id, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Firmar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
