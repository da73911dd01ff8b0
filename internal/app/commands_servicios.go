package app

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/catalog"
)

func (a *App) cmdServicios(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: contratos servicios listar|ver|crear|editar|eliminar")
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "listar":
		return a.serviciosListar(ctx, rest)
	case "ver":
		return a.serviciosVer(ctx, rest)
	case "crear":
		return a.serviciosCrear(ctx, rest)
	case "editar":
		return a.serviciosEditar(ctx, rest)
	case "eliminar":
		return a.serviciosEliminar(ctx, rest)
	default:
		return fmt.Errorf("subcomando desconocido: servicios %s", sub)
	}
}

func (a *App) serviciosListar(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("servicios listar", flag.ContinueOnError)
	tipo := fs.String("tipo", "", "filtrar por tipo (Internet|Television)")
	page := fs.Int("page", 0, "página")
	limit := fs.Int("limit", 0, "elementos por página")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.servicios.FetchList(ctx, catalog.ListFilter{
		Tipo:  *tipo,
		Page:  *page,
		Limit: *limit,
	}); err != nil {
		return err
	}
	items := a.servicios.Items()
	pag := a.servicios.Pagination()
	if len(items) == 0 {
		fmt.Println("No hay servicios en el catálogo")
		return nil
	}
	for _, sv := range items {
		fmt.Printf("  %-10s %-30s $%.2f  (%s)\n", sv.Tipo, sv.Nombre, sv.Precio, sv.ID)
	}
	fmt.Printf("Página %d de %d (%d servicios en total)\n",
		pag.CurrentPage, pag.TotalPages, pag.TotalItems)
	return nil
}

func (a *App) serviciosVer(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: contratos servicios ver <id>")
	}
	sv, err := a.servicios.GetByID(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s) $%.2f\n", sv.Nombre, sv.Tipo, sv.Precio)
	fmt.Printf("  %s\n", sv.Descripcion)
	return nil
}

func (a *App) serviciosCrear(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("servicios crear", flag.ContinueOnError)
	nombre := fs.String("nombre", "", "nombre del servicio")
	descripcion := fs.String("descripcion", "", "descripción")
	precio := fs.Float64("precio", 0, "precio mensual")
	tipo := fs.String("tipo", "", "tipo (Internet|Television)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := a.servicios.Create(ctx, models.CreateServicioRequest{
		Nombre:      *nombre,
		Descripcion: *descripcion,
		Precio:      *precio,
		Tipo:        *tipo,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Servicio %s creado (%s)\n", created.Nombre, created.ID)
	return nil
}

func (a *App) serviciosEditar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: contratos servicios editar <id> [flags]")
	}
	id, rest := args[0], args[1:]

	fs := flag.NewFlagSet("servicios editar", flag.ContinueOnError)
	nombre := fs.String("nombre", "", "nuevo nombre")
	descripcion := fs.String("descripcion", "", "nueva descripción")
	precio := fs.Float64("precio", -1, "nuevo precio")
	tipo := fs.String("tipo", "", "nuevo tipo")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	req := models.UpdateServicioRequest{}
	if *nombre != "" {
		req.Nombre = nombre
	}
	if *descripcion != "" {
		req.Descripcion = descripcion
	}
	if *precio >= 0 {
		req.Precio = precio
	}
	if *tipo != "" {
		req.Tipo = tipo
	}

	updated, err := a.servicios.Update(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Printf("Servicio %s actualizado\n", updated.Nombre)
	return nil
}

func (a *App) serviciosEliminar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: contratos servicios eliminar <id>")
	}
	if err := a.servicios.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Servicio eliminado")
	return nil
}
