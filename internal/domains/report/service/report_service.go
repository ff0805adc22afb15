package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	orderModel "bookstore-storefront/internal/domains/order/model"
	"bookstore-storefront/internal/domains/report/model"
	"bookstore-storefront/pkg/logger"
)

const (
	sheetName   = "Sales"
	contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	linkExpiry  = 24 * time.Hour
)

// RowSource là phần order repository mà báo cáo đọc
type RowSource interface {
	ListForReport(ctx context.Context, from, to time.Time) ([]orderModel.ReportRow, error)
}

// ObjectStore là nơi lưu file export (MinIO)
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
}

type ServiceInterface interface {
	// BuildSalesReport trả file xlsx + tổng
	BuildSalesReport(ctx context.Context, req model.SalesReportRequest) (*excelize.File, *model.Summary, error)
	// StoreSalesReport build rồi upload, trả presigned URL
	StoreSalesReport(ctx context.Context, req model.SalesReportRequest) (*model.StoredReport, error)
}

type ReportService struct {
	rows  RowSource
	store ObjectStore // nil = không lưu được
	now   func() time.Time
}

func NewReportService(rows RowSource, store ObjectStore) *ReportService {
	return &ReportService{rows: rows, store: store, now: time.Now}
}

var _ ServiceInterface = (*ReportService)(nil)

func (s *ReportService) BuildSalesReport(ctx context.Context, req model.SalesReportRequest) (*excelize.File, *model.Summary, error) {
	from, to, err := req.Range()
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.rows.ListForReport(ctx, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load report rows: %w", err)
	}

	f, summary, err := buildSalesFile(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, summary, nil
}

func (s *ReportService) StoreSalesReport(ctx context.Context, req model.SalesReportRequest) (*model.StoredReport, error) {
	if s.store == nil {
		return nil, model.ErrStoreDisabled
	}

	f, summary, err := s.BuildSalesReport(ctx, req)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}

	now := s.now()
	filename := Filename(req)
	key := fmt.Sprintf("reports/sales/%s/%d_%s", now.Format("2006/01/02"), now.Unix(), filename)

	if err := s.store.Upload(ctx, key, buf.Bytes(), contentType); err != nil {
		return nil, err
	}
	url, err := s.store.PresignedURL(ctx, key, filename, linkExpiry)
	if err != nil {
		return nil, err
	}

	logger.Info("Sales report stored", map[string]interface{}{
		"key":    key,
		"orders": summary.Orders,
		"bytes":  buf.Len(),
	})

	return &model.StoredReport{
		Key:       key,
		Filename:  filename,
		URL:       url,
		ExpiresAt: now.Add(linkExpiry),
		Summary:   *summary,
	}, nil
}

// Filename: sales_<from>_<to>.xlsx
func Filename(req model.SalesReportRequest) string {
	return fmt.Sprintf("sales_%s_%s.xlsx", req.From, req.To)
}

// =====================================================
// EXCEL
// =====================================================

var headers = []string{
	"Order Number",
	"Placed At",
	"Payment Method",
	"Payment Status",
	"Status",
	"Items",
	"Subtotal",
	"Offer Discount",
	"Coupon",
	"Coupon Discount",
	"Tax",
	"Total",
	"Refunded",
	"Net",
}

func buildSalesFile(rows []orderModel.ReportRow) (*excelize.File, *model.Summary, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, nil, err
	}

	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	summary := &model.Summary{
		Subtotal:       decimal.Zero,
		Discount:       decimal.Zero,
		CouponDiscount: decimal.Zero,
		Tax:            decimal.Zero,
		Total:          decimal.Zero,
		Refunded:       decimal.Zero,
	}

	for i, r := range rows {
		rowNum := i + 2
		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, rowNum)
			return name
		}

		net := r.Total.Sub(r.RefundedTotal)

		f.SetCellValue(sheetName, cell(1), r.OrderNumber)
		f.SetCellValue(sheetName, cell(2), r.CreatedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, cell(3), string(r.PaymentMethod))
		f.SetCellValue(sheetName, cell(4), string(r.PaymentStatus))
		f.SetCellValue(sheetName, cell(5), string(r.Status))
		f.SetCellValue(sheetName, cell(6), r.ItemCount)
		f.SetCellValue(sheetName, cell(7), r.Subtotal.InexactFloat64())
		f.SetCellValue(sheetName, cell(8), r.Discount.InexactFloat64())
		f.SetCellValue(sheetName, cell(9), r.CouponCode)
		f.SetCellValue(sheetName, cell(10), r.CouponDiscount.InexactFloat64())
		f.SetCellValue(sheetName, cell(11), r.Tax.InexactFloat64())
		f.SetCellValue(sheetName, cell(12), r.Total.InexactFloat64())
		f.SetCellValue(sheetName, cell(13), r.RefundedTotal.InexactFloat64())
		f.SetCellValue(sheetName, cell(14), net.InexactFloat64())

		summary.Orders++
		summary.Subtotal = summary.Subtotal.Add(r.Subtotal)
		summary.Discount = summary.Discount.Add(r.Discount)
		summary.CouponDiscount = summary.CouponDiscount.Add(r.CouponDiscount)
		summary.Tax = summary.Tax.Add(r.Tax)
		summary.Total = summary.Total.Add(r.Total)
		summary.Refunded = summary.Refunded.Add(r.RefundedTotal)
	}
	summary.NetRevenue = summary.Total.Sub(summary.Refunded)

	// dòng tổng
	totalRow := len(rows) + 3
	at := func(col int) string {
		name, _ := excelize.CoordinatesToCellName(col, totalRow)
		return name
	}
	f.SetCellValue(sheetName, at(1), "TOTAL")
	f.SetCellValue(sheetName, at(6), summary.Orders)
	f.SetCellValue(sheetName, at(7), summary.Subtotal.InexactFloat64())
	f.SetCellValue(sheetName, at(8), summary.Discount.InexactFloat64())
	f.SetCellValue(sheetName, at(10), summary.CouponDiscount.InexactFloat64())
	f.SetCellValue(sheetName, at(11), summary.Tax.InexactFloat64())
	f.SetCellValue(sheetName, at(12), summary.Total.InexactFloat64())
	f.SetCellValue(sheetName, at(13), summary.Refunded.InexactFloat64())
	f.SetCellValue(sheetName, at(14), summary.NetRevenue.InexactFloat64())
	if headerStyle != 0 {
		f.SetCellStyle(sheetName, at(1), at(len(headers)), headerStyle)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 26)
	_ = f.SetColWidth(sheetName, "B", "E", 18)
	return f, summary, nil
}
