package dialect

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tordrt/ddlkit/internal/ddlerr"
	"github.com/tordrt/ddlkit/internal/model"
	"github.com/tordrt/ddlkit/internal/platform"
)

var errNoConnector = errors.New("no connector configured")

var derbyDrivers = []string{
	"org.apache.derby.jdbc.ClientDriver",
	"org.apache.derby.jdbc.EmbeddedDriver",
}

// Cloudscape is the IBM predecessor of Derby.
func Cloudscape() platform.Definition {
	info := platform.NewInfo("Cloudscape")
	info.MaxIdentifierLength = 128
	info.ForeignKeysEmbedded = false
	info.SupportsAlterColumn = false
	info.SupportsAlterForDrop = false
	info.OnDeleteActions = []model.Action{model.ActionCascade, model.ActionSetNull, model.ActionRestrict}
	info.OnUpdateActions = []model.Action{model.ActionRestrict}
	info.BooleanLiteralsAsNumbers = true
	info.DefaultValuesForLongTypes = false

	types := forBitDataTypes(platform.NewTypeMap()).
		Set(model.TypeBit, "SMALLINT").
		Set(model.TypeBoolean, "SMALLINT").
		Set(model.TypeTinyInt, "SMALLINT").
		Set(model.TypeFloat, "DOUBLE").
		Set(model.TypeBlob, "BLOB").
		Set(model.TypeClob, "CLOB")

	return platform.Definition{
		Info:          info,
		Types:         types,
		AutoIncrement: platform.InlineAutoIncrement{Modifier: "GENERATED BY DEFAULT AS IDENTITY"},
		Hooks: platform.Hooks{
			RenameTable: renameTableStatement,
		},
		ReaderHooks: platform.ReaderHooks{
			// system generated backing indices are named SQL<timestamp>
			IsInternalPrimaryKeyIndex: namePrefixed("SQL"),
			IsInternalForeignKeyIndex: fkIndexPrefixed("SQL"),
			AdjustColumn:              derbyIdentity,
		},
	}
}

// Derby adds column drops and in-place column changes to Cloudscape, and
// creates databases through the ;create=true URL attribute.
func Derby() platform.Definition {
	def := Cloudscape()
	def.Info.Name = "Derby"
	def.Info.SupportsAlterColumn = true
	def.Info.SupportsAlterForDrop = true
	def.Hooks.ModifyColumn = stepwiseModify{
		alter:      "ALTER COLUMN ",
		setType:    " SET DATA TYPE ",
		setNotNull: " NOT NULL",
		dropNull:   " NULL",
		setDefault: " DEFAULT ",
		noDefault:  " DROP DEFAULT",
	}.hook
	def.Lifecycle = derbyLifecycle{}
	return def
}

// derbyIdentity turns the identity default Derby reports back into the flag.
func derbyIdentity(_ *model.Table, c *model.Column) {
	if c.Default == nil {
		return
	}
	d := strings.ToUpper(*c.Default)
	if strings.HasPrefix(d, "GENERATED_BY_DEFAULT") || strings.HasPrefix(d, "AUTOINCREMENT") {
		c.AutoIncrement = true
		c.Default = nil
	}
}

type derbyLifecycle struct{}

// isDerbyDriver accepts the Derby drivers and repackaged copies of them.
func isDerbyDriver(driver string) bool {
	return strings.HasSuffix(driver, "derby.jdbc.EmbeddedDriver") ||
		strings.HasSuffix(driver, "derby.jdbc.ClientDriver")
}

// derbyCreationURL appends the create attribute and the caller parameters to
// url. A create parameter given by the caller replaces the default true;
// remaining parameters follow in name order. A URL that already carries the
// attribute keeps it unless the caller overrides it.
func derbyCreationURL(url string, params map[string]string) string {
	create := ""
	if !strings.Contains(strings.ToLower(url), ";create=") {
		create = "true"
	}
	var rest []string
	for _, k := range sortedKeys(params) {
		if strings.EqualFold(k, "create") {
			create = params[k]
			continue
		}
		rest = append(rest, k)
	}

	var b strings.Builder
	b.WriteString(url)
	if create != "" {
		b.WriteString(";create=")
		b.WriteString(create)
	}
	for _, k := range rest {
		b.WriteString(";")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String()
}

func (derbyLifecycle) CreateDatabase(ctx context.Context, conn platform.Connector, cfg platform.ConnectionConfig, logger *slog.Logger) error {
	if !isDerbyDriver(cfg.Driver) {
		return ddlerr.Unsupported("Derby", "creating databases via the driver %s", cfg.Driver)
	}
	url := derbyCreationURL(cfg.URL, cfg.Parameters)
	logger.Debug("creating derby database", slog.String("driver", cfg.Driver))
	return withConnection(ctx, conn, cfg, url, nil)
}

func (derbyLifecycle) DropDatabase(context.Context, platform.Connector, platform.ConnectionConfig, *slog.Logger) error {
	return ddlerr.Unsupported("Derby", "dropping databases")
}
