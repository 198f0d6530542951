package ledger_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"dispatch/internal/adapters/out/ledger"
	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type LedgerReaderIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *sql.DB
	reader    *ledger.Reader
}

func (suite *LedgerReaderIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := ledger.Open(ctx, dsn)
	suite.Require().NoError(err)
	suite.db = db

	_, err = db.ExecContext(ctx, `
		CREATE SCHEMA shop;
		CREATE TABLE shop."order" (
			reference      text PRIMARY KEY,
			customer_name  text NOT NULL,
			customer_phone text,
			address        text NOT NULL,
			memo           text,
			status         text NOT NULL,
			item_summary   text
		)`)
	suite.Require().NoError(err)

	reader, err := ledger.NewReader(db, ledger.Config{
		Table:          "shop.order",
		ReadyStatus:    "PAID_READY",
		CanceledStatus: "CANCELLED",
	})
	suite.Require().NoError(err)
	suite.reader = reader
}

func (suite *LedgerReaderIntegrationTestSuite) SetupTest() {
	_, err := suite.db.Exec(`TRUNCATE TABLE shop."order"`)
	suite.Require().NoError(err)
}

func (suite *LedgerReaderIntegrationTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.Require().NoError(suite.db.Close())
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *LedgerReaderIntegrationTestSuite) insert(ref, status, summary string) {
	_, err := suite.db.Exec(`
		INSERT INTO shop."order" (reference, customer_name, customer_phone, address, memo, status, item_summary)
		VALUES ($1, 'Jane Roe', '+15550100', '12 Main St', NULL, $2, $3)`, ref, status, summary)
	suite.Require().NoError(err)
}

func (suite *LedgerReaderIntegrationTestSuite) TestReadyOrders_ParsesSummary() {
	suite.insert("ORD-100", "PAID_READY", "[Produce] Apples(2), Bananas(3) | [Dairy] Milk(1)")
	suite.insert("ORD-101", "PENDING_PAYMENT", "[Produce] Apples(1)")

	orders, err := suite.reader.ReadyOrders(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)

	o := orders[0]
	suite.Equal("ORD-100", o.Reference)
	suite.Equal(feed.StatusReadyForDispatch, o.Status)
	suite.Equal(task.SourceInternal, o.Source)
	suite.Equal("Jane Roe", o.Recipient.Name)
	suite.Empty(o.Recipient.Memo)
	suite.Require().Len(o.Blocks, 2)
	suite.Equal("Produce", o.Blocks[0].Category)
	suite.Equal("Apples(2), Bananas(3)", o.Blocks[0].Items.Render())
	suite.Empty(o.Issues)
}

func (suite *LedgerReaderIntegrationTestSuite) TestReadyOrders_ReportsMalformedBlocks() {
	suite.insert("ORD-100", "PAID_READY", "[Produce] Apples(2) | [Dairy]")

	orders, err := suite.reader.ReadyOrders(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)
	suite.Len(orders[0].Blocks, 1)
	suite.Require().Len(orders[0].Issues, 1)
	suite.ErrorIs(orders[0].Issues[0], errs.ErrParse)
}

func (suite *LedgerReaderIntegrationTestSuite) TestCanceledOrders() {
	suite.insert("ORD-100", "CANCELLED", "[Produce] Apples(2)")
	suite.insert("ORD-101", "PAID_READY", "[Produce] Apples(2)")

	orders, err := suite.reader.CanceledOrders(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)
	suite.Equal("ORD-100", orders[0].Reference)
	suite.Equal(feed.StatusCanceled, orders[0].Status)
	suite.Empty(orders[0].Blocks)
}

func (suite *LedgerReaderIntegrationTestSuite) TestNewReader_RequiresConfig() {
	_, err := ledger.NewReader(suite.db, ledger.Config{ReadyStatus: "a", CanceledStatus: "b"})
	suite.ErrorIs(err, errs.ErrValueIsRequired)
}

func TestLedgerReaderIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerReaderIntegrationTestSuite))
}
