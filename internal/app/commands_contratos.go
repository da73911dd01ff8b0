package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/catalog"
	"github.com/telecomplus/contratos/internal/services/contract"
)

func (a *App) cmdContratos(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: contratos contratos listar|ver|crear|editar|eliminar")
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "listar":
		return a.contratosListar(ctx, rest)
	case "ver":
		return a.contratosVer(ctx, rest)
	case "crear":
		return a.contratosCrear(ctx, rest)
	case "editar":
		return a.contratosEditar(ctx, rest)
	case "eliminar":
		return a.contratosEliminar(ctx, rest)
	default:
		return fmt.Errorf("subcomando desconocido: contratos %s", sub)
	}
}

func (a *App) contratosListar(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("contratos listar", flag.ContinueOnError)
	estado := fs.String("estado", "", "filtrar por estado")
	page := fs.Int("page", 0, "página")
	limit := fs.Int("limit", 0, "elementos por página")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.contratos.FetchList(ctx, contract.ListFilter{
		Estado: *estado,
		Page:   *page,
		Limit:  *limit,
	}); err != nil {
		return err
	}
	items := a.contratos.Items()
	pag := a.contratos.Pagination()
	if len(items) == 0 {
		fmt.Println("No hay contratos")
		return nil
	}
	for _, c := range items {
		fmt.Printf("  %-12s %-11s %s → %s  servicios: %s  (%s)\n",
			c.Numero, c.Estado, c.FechaInicio, c.FechaFin,
			strings.Join(c.ServiceIDs(), ","), c.ID)
	}
	fmt.Printf("Página %d de %d (%d contratos en total)\n",
		pag.CurrentPage, pag.TotalPages, pag.TotalItems)
	return nil
}

func (a *App) contratosVer(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: contratos contratos ver <id>")
	}
	c, err := a.contratos.GetByID(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Contrato %s (%s)\n", c.Numero, c.Estado)
	fmt.Printf("  vigencia: %s → %s\n", c.FechaInicio, c.FechaFin)
	if len(c.Servicios) > 0 {
		fmt.Println("  servicios:")
		for _, sv := range c.Servicios {
			fmt.Printf("    %-10s %-30s $%.2f\n", sv.Tipo, sv.Nombre, sv.Precio)
		}
	} else {
		fmt.Printf("  servicios: %s\n", strings.Join(c.ServiceIDs(), ", "))
	}
	return nil
}

func (a *App) contratosCrear(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("contratos crear", flag.ContinueOnError)
	numero := fs.String("numero", "", "número de contrato")
	inicio := fs.String("inicio", "", "fecha de inicio (ISO-8601)")
	fin := fs.String("fin", "", "fecha de fin (ISO-8601)")
	estado := fs.String("estado", models.EstadoActivo, "estado inicial")
	servicios := fs.String("servicios", "", "ids de servicios separados por coma")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var ids []string
	if *servicios != "" {
		ids = strings.Split(*servicios, ",")
	}
	created, err := a.contratos.Create(ctx, models.CreateContratoRequest{
		Numero:       *numero,
		FechaInicio:  *inicio,
		FechaFin:     *fin,
		Estado:       *estado,
		ServiciosIDs: ids,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Contrato %s creado (%s)\n", created.Numero, created.ID)
	return nil
}

func (a *App) contratosEditar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: contratos contratos editar <id> [flags]")
	}
	id, rest := args[0], args[1:]

	fs := flag.NewFlagSet("contratos editar", flag.ContinueOnError)
	numero := fs.String("numero", "", "nuevo número")
	inicio := fs.String("inicio", "", "nueva fecha de inicio")
	fin := fs.String("fin", "", "nueva fecha de fin")
	estado := fs.String("estado", "", "nuevo estado")
	servicios := fs.String("servicios", "", "nuevos ids de servicios separados por coma")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	req := models.UpdateContratoRequest{}
	if *numero != "" {
		req.Numero = numero
	}
	if *inicio != "" {
		req.FechaInicio = inicio
	}
	if *fin != "" {
		req.FechaFin = fin
	}
	if *estado != "" {
		req.Estado = estado
	}
	if *servicios != "" {
		req.ServiciosIDs = strings.Split(*servicios, ",")
	}

	updated, err := a.contratos.Update(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Printf("Contrato %s actualizado (%s)\n", updated.Numero, updated.Estado)
	return nil
}

func (a *App) contratosEliminar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: contratos contratos eliminar <id>")
	}
	if err := a.contratos.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Contrato eliminado")
	return nil
}

func (a *App) cmdDashboard(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	stats, err := a.contratos.FetchStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Contratos: %d en total\n", stats.Total)
	for _, estado := range []string{models.EstadoActivo, models.EstadoInactivo, models.EstadoSuspendido, models.EstadoCancelado} {
		if n := stats.PorEstado[estado]; n > 0 {
			fmt.Printf("  %-11s %d\n", estado, n)
		}
	}
	if len(stats.PorTipoServicio) > 0 {
		fmt.Println("Servicios contratados por tipo:")
		for _, tipo := range []string{models.TipoInternet, models.TipoTelevision} {
			if n := stats.PorTipoServicio[tipo]; n > 0 {
				fmt.Printf("  %-11s %d\n", tipo, n)
			}
		}
	}

	if err := a.servicios.FetchList(ctx, catalog.ListFilter{Limit: 1000}); err != nil {
		return err
	}
	porTipo := map[string]int{}
	for _, sv := range a.servicios.Items() {
		porTipo[sv.Tipo]++
	}
	if len(porTipo) > 0 {
		fmt.Println("Catálogo de servicios por tipo:")
		for _, tipo := range []string{models.TipoInternet, models.TipoTelevision} {
			if n := porTipo[tipo]; n > 0 {
				fmt.Printf("  %-11s %d\n", tipo, n)
			}
		}
	}

	expiring, err := a.contratos.ExpiringSoon(ctx)
	if err != nil {
		return err
	}
	if len(expiring) > 0 {
		fmt.Println("Contratos próximos a vencer (30 días):")
		for _, c := range expiring {
			fmt.Printf("  %-12s vence %s\n", c.Numero, c.FechaFin)
		}
	}
	return nil
}
