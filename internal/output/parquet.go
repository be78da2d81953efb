package output

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/chrisdamba/foodmarket/internal/accounting"
	"github.com/chrisdamba/foodmarket/internal/cloudwriter"
	"github.com/chrisdamba/foodmarket/internal/models"
)

// InvoiceRow is the flattened Parquet layout of an invoice record.
type InvoiceRow struct {
	ID                string  `parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	RestaurantID      string  `parquet:"name=restaurantId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Week              string  `parquet:"name=week,type=BYTE_ARRAY,convertedtype=UTF8"`
	WeekStart         int64   `parquet:"name=weekStart,type=INT64"`
	WeekEnd           int64   `parquet:"name=weekEnd,type=INT64"`
	GraceDeadline     int64   `parquet:"name=graceDeadline,type=INT64"`
	Status            string  `parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
	OrderCount        int32   `parquet:"name=orderCount,type=INT32"`
	GrossRevenue      float64 `parquet:"name=grossRevenue,type=DOUBLE"`
	CouponsUsed       float64 `parquet:"name=couponsUsed,type=DOUBLE"`
	NetCommission     float64 `parquet:"name=netCommission,type=DOUBLE"`
	PendingCommission float64 `parquet:"name=pendingCommission,type=DOUBLE"`
}

func NewInvoiceRow(inv accounting.InvoiceRecord) InvoiceRow {
	return InvoiceRow{
		ID:                inv.ID,
		RestaurantID:      inv.RestaurantID,
		Week:              inv.Period.Key.String(),
		WeekStart:         inv.Period.WeekStart.UnixMilli(),
		WeekEnd:           inv.Period.WeekEnd.UnixMilli(),
		GraceDeadline:     inv.Period.GraceDeadline.UnixMilli(),
		Status:            string(inv.Status),
		OrderCount:        int32(inv.OrderCount),
		GrossRevenue:      inv.Period.GrossRevenue,
		CouponsUsed:       inv.Period.CouponsUsed,
		NetCommission:     inv.Period.NetCommission,
		PendingCommission: inv.PendingCommission,
	}
}

// CloudParquetFile lets the Parquet writer stream into a cloud object.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

func (c *CloudParquetFile) Open(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

func (c *CloudParquetFile) Abort() error {
	return c.cloudWriter.Abort()
}

// InvoiceExporter writes invoice history as Parquet, either under a local
// directory or to an object store bucket.
type InvoiceExporter struct {
	basePath           string
	folder             string
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewInvoiceExporter(ctx context.Context, config *models.Config) (*InvoiceExporter, error) {
	if config.OutputDestination != "cloud" {
		return NewLocalInvoiceExporter(config.OutputPath, config.OutputFolder), nil
	}

	var factory cloudwriter.CloudWriterFactory
	switch config.CloudStorage.Provider {
	case "s3":
		f, err := cloudwriter.NewS3WriterFactory(ctx, config.CloudStorage.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		factory = f
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %s", config.CloudStorage.Provider)
	}
	return NewCloudInvoiceExporter(factory, config.CloudStorage.BucketName, config.OutputFolder), nil
}

func NewLocalInvoiceExporter(basePath, folder string) *InvoiceExporter {
	return &InvoiceExporter{basePath: basePath, folder: folder}
}

func NewCloudInvoiceExporter(factory cloudwriter.CloudWriterFactory, bucket, folder string) *InvoiceExporter {
	return &InvoiceExporter{folder: folder, cloudWriterFactory: factory, cloudBucketName: bucket}
}

// Export writes the invoices to invoices/<name>.parquet and returns where
// the file went. A failed export leaves no object or file behind.
func (e *InvoiceExporter) Export(ctx context.Context, name string, invoices []accounting.InvoiceRecord) (string, error) {
	fw, location, err := e.open(ctx, name)
	if err != nil {
		return "", err
	}

	pw, err := writer.NewParquetWriter(fw, new(InvoiceRow), 4)
	if err != nil {
		e.discard(fw, location)
		return "", fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	for _, inv := range invoices {
		if err := pw.Write(NewInvoiceRow(inv)); err != nil {
			e.discard(fw, location)
			return "", fmt.Errorf("failed to write invoice %s: %w", inv.ID, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		e.discard(fw, location)
		return "", fmt.Errorf("failed to finish parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", location, err)
	}
	return location, nil
}

func (e *InvoiceExporter) discard(fw source.ParquetFile, location string) {
	if cf, ok := fw.(*CloudParquetFile); ok {
		if err := cf.Abort(); err != nil {
			log.Printf("[export] abort %s: %v", location, err)
		}
		return
	}
	fw.Close()
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		log.Printf("[export] remove partial %s: %v", location, err)
	}
}

func (e *InvoiceExporter) open(ctx context.Context, name string) (source.ParquetFile, string, error) {
	fileName := name + ".parquet"
	if e.cloudWriterFactory != nil {
		objectPath := path.Join(e.folder, "invoices", fileName)
		cw, err := e.cloudWriterFactory.NewWriter(ctx, e.cloudBucketName, objectPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cw), "s3://" + e.cloudBucketName + "/" + objectPath, nil
	}

	dir := filepath.Join(e.basePath, e.folder, "invoices")
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, "", err
	}
	filePath := filepath.Join(dir, fileName)
	fw, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, filePath, nil
}
