package app

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/session"
	"github.com/telecomplus/contratos/internal/transport"
)

// ErrNotAuthenticated is returned by commands that need a session.
var ErrNotAuthenticated = errors.New("debes iniciar sesión primero: contratos login")

// Run dispatches a CLI invocation.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "logout":
		return a.cmdLogout(ctx)
	case "perfil":
		return a.cmdPerfil(ctx, rest)
	case "contratos":
		return a.cmdContratos(ctx, rest)
	case "servicios":
		return a.cmdServicios(ctx, rest)
	case "dashboard":
		return a.cmdDashboard(ctx)
	default:
		usage()
		return fmt.Errorf("comando desconocido: %s", cmd)
	}
}

func usage() {
	fmt.Print(`Telecom Plus - gestión de contratos y servicios

Uso:
  contratos login      -email <email> -password <contraseña>
  contratos register   -nombre <nombre> -email <email> -password <c> -confirm <c>
  contratos logout
  contratos perfil     ver | editar | password
  contratos contratos  listar | ver | crear | editar | eliminar
  contratos servicios  listar | ver | crear | editar | eliminar
  contratos dashboard
`)
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email de la cuenta")
	pass := fs.String("password", "", "contraseña")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.nav.setRoute(transport.LoginRoute)
	if err := a.sessions.Login(ctx, *email, *pass); err != nil {
		return err
	}
	if user, ok := a.sessions.CurrentUser(); ok {
		fmt.Printf("Sesión iniciada como %s <%s>\n", user.Nombre, user.Email)
	}
	return nil
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	nombre := fs.String("nombre", "", "nombre completo")
	email := fs.String("email", "", "email de la cuenta")
	pass := fs.String("password", "", "contraseña")
	confirm := fs.String("confirm", "", "confirmación de la contraseña")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.nav.setRoute("/register")
	if err := a.sessions.Register(ctx, *nombre, *email, *pass, *confirm); err != nil {
		return err
	}
	if user, ok := a.sessions.CurrentUser(); ok {
		fmt.Printf("Cuenta creada. Sesión iniciada como %s <%s>\n", user.Nombre, user.Email)
	}
	return nil
}

func (a *App) cmdLogout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	fmt.Println("Sesión cerrada")
	return nil
}

func (a *App) cmdPerfil(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: contratos perfil ver|editar|password")
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "ver":
		u, err := a.perfil.Get(ctx)
		if err != nil {
			return err
		}
		printUsuario(*u)
		return nil
	case "editar":
		fs := flag.NewFlagSet("perfil editar", flag.ContinueOnError)
		nombre := fs.String("nombre", "", "nuevo nombre")
		email := fs.String("email", "", "nuevo email")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		req := models.UpdateProfileRequest{}
		if *nombre != "" {
			req.Nombre = nombre
		}
		if *email != "" {
			req.Email = email
		}
		u, err := a.perfil.Update(ctx, req)
		if err != nil {
			return err
		}
		a.sessions.SetCurrentUser(ctx, *u)
		fmt.Println("Perfil actualizado")
		printUsuario(*u)
		return nil
	case "password":
		fs := flag.NewFlagSet("perfil password", flag.ContinueOnError)
		actual := fs.String("actual", "", "contraseña actual")
		nueva := fs.String("nueva", "", "contraseña nueva")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := a.perfil.ChangePassword(ctx, models.ChangePasswordRequest{
			CurrentPassword: *actual,
			NewPassword:     *nueva,
		}); err != nil {
			return err
		}
		fmt.Println("Contraseña actualizada")
		return nil
	default:
		return fmt.Errorf("subcomando desconocido: perfil %s", sub)
	}
}

// requireSession restores the persisted session on first use and fails the
// command when no authenticated session exists.
func (a *App) requireSession(ctx context.Context) error {
	if a.sessions.State() == session.Unknown {
		a.sessions.Restore(ctx)
	}
	if !a.sessions.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func printUsuario(u models.Usuario) {
	fmt.Printf("  %s <%s>\n", u.Nombre, u.Email)
	if u.CreatedAt != "" {
		fmt.Printf("  registrado: %s\n", u.CreatedAt)
	}
}
