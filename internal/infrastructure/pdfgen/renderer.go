package pdfgen

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"locar-esign/internal/config"
	"locar-esign/internal/domain/entity"
)

// Renderer produces the rental contract PDF for a rental record. The
// signature flow only depends on this interface; the layout below is one
// implementation of it.
type Renderer interface {
	Render(rental *entity.Rental) ([]byte, error)
}

type renderer struct {
	appName string
	logger  *zap.Logger
}

func NewRenderer(cfg *config.Config, logger *zap.Logger) Renderer {
	return &renderer{
		appName: cfg.App.Name,
		logger:  logger,
	}
}

func (r *renderer) Render(rental *entity.Rental) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Contrato de Locacao %d", rental.ID), false)
	pdf.SetAuthor(r.appName, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "CONTRATO DE LOCACAO DE VEICULO", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"Contrato n. %d\n\nLOCATARIO: %s (%s)\nVEICULO: %s\nPERIODO: %s a %s\nVALOR TOTAL: R$ %.2f",
		rental.ID,
		rental.CustomerName,
		rental.CustomerEmail,
		rental.VehicleDesc,
		rental.StartsAt.Format("02/01/2006"),
		rental.EndsAt.Format("02/01/2006"),
		rental.TotalAmount,
	), "", "L", false)
	pdf.Ln(8)

	pdf.MultiCell(0, 6,
		"O locatario declara ter recebido o veiculo acima descrito em perfeitas "+
			"condicoes de uso e se compromete a devolve-lo nas mesmas condicoes ao "+
			"fim do periodo contratado, respondendo por eventuais danos, multas e "+
			"encargos incorridos durante a locacao.",
		"", "L", false)
	pdf.Ln(16)

	pdf.CellFormat(0, 6, "_______________________________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, rental.CustomerName, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render contract pdf: %w", err)
	}

	r.logger.Info("Contract PDF rendered",
		zap.Int64("rental_id", rental.ID),
		zap.Int("size_bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

var Module = fx.Module("pdfgen",
	fx.Provide(NewRenderer),
)
