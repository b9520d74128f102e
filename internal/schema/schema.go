// Package schema declares the canonical registration-record schema: the
// column registry, legacy-name aliases, coercion defaults and the metric
// policies that varied between dashboard revisions. Everything revision-
// dependent lives in Config so callers pick one configuration instead of
// forking the pipeline.
package schema

// Canonical column names, exactly as they appear in the source cadastre.
const (
	ColMunicipio       = "MUNICIPIO"
	ColBairro          = "BAIRRO"
	ColTipoCadastro    = "TIPO_CADASTRO"
	ColSituacaoLigacao = "SITUACAO_LIGACAO"
	ColIrregularidade  = "IRREGULARIDADE_IDENTIFICADA"
	ColSituacaoHidro   = "SITUACAO_HIDROMETRO"
	ColTipoEdificacao  = "TIPO_EDIFICACAO"
	ColFonteAlt        = "FONTE_ALTERNATIVA"
	ColMoradores       = "NUMERO_MORADORES"
	ColCapacidadeCaixa = "CAPACIDADE_CAIXA_LITROS"
	ColPadraoImovel    = "PADRAO_DO_IMOVEL"
	ColLogradouro      = "LOGRADOURO"
	ColQuadra          = "QUADRA"
	ColTipoVisita      = "TIPO_VISITA"
	ColMatricula       = "MATRICULA"
	ColReambulador     = "REAMBULADOR"
	ColDataColeta      = "DATA_COLETA"
	ColLatitude        = "LATITUDE"
	ColLongitude       = "LONGITUDE"

	// ColPossuiHidrometro is derived during normalization, never read from
	// the source file.
	ColPossuiHidrometro = "POSSUI_HIDROMETRO"
)

// Values written into the derived water-meter column.
const (
	MeterYes = "SIM"
	MeterNo  = "NÃO"
)

// Kind is the declared storage type of a canonical column.
type Kind int

const (
	KindString Kind = iota
	KindNumeric
)

// ColumnSpec declares one canonical column.
type ColumnSpec struct {
	Name string
	Kind Kind
}

// Alias maps a legacy column name onto its canonical equivalent. Aliases
// apply in declaration order and only when the canonical column is absent
// from the input.
type Alias struct {
	Legacy    string
	Canonical string
}

// Config is one versioned schema configuration. The zero value is not
// usable; start from Default.
type Config struct {
	Version int

	Columns []ColumnSpec
	Aliases []Alias

	// StringSentinel replaces missing values in string columns.
	StringSentinel string

	// MeterInstalled lists the uppercased SITUACAO_HIDROMETRO values that
	// count as "meter present".
	MeterInstalled []string

	// ClandestineMarker is matched case- and accent-insensitively as a
	// substring of IRREGULARIDADE_IDENTIFICADA.
	ClandestineMarker string

	// DuplicateExcludeZero drops MATRICULA == 0 before counting duplicate
	// registrations. Earlier revisions counted the zeros too.
	DuplicateExcludeZero bool

	// MeanIgnoreZeroResidents restricts the mean-residents KPI to rows
	// with at least one resident. Earlier revisions took the plain mean.
	MeanIgnoreZeroResidents bool
}

// Default returns the latest revision of the schema configuration.
func Default() Config {
	return Config{
		Version: 2,
		Columns: []ColumnSpec{
			{ColMunicipio, KindString},
			{ColBairro, KindString},
			{ColTipoCadastro, KindString},
			{ColSituacaoLigacao, KindString},
			{ColIrregularidade, KindString},
			{ColSituacaoHidro, KindString},
			{ColTipoEdificacao, KindString},
			{ColFonteAlt, KindString},
			{ColMoradores, KindNumeric},
			{ColCapacidadeCaixa, KindNumeric},
			{ColPadraoImovel, KindString},
			{ColLogradouro, KindString},
			{ColQuadra, KindString},
			{ColTipoVisita, KindString},
			{ColMatricula, KindNumeric},
			{ColReambulador, KindString},
			{ColDataColeta, KindString},
			{ColLatitude, KindNumeric},
			{ColLongitude, KindNumeric},
		},
		Aliases: []Alias{
			{"TOTAL_DE_MORADORES", ColMoradores},
			{"QUANTOS_LITROS_TOTAIS", ColCapacidadeCaixa},
			{"STATUS", ColSituacaoLigacao},
		},
		StringSentinel:          "Não informado",
		MeterInstalled:          []string{"NORMAL", "QUEBRADO", "INSTALADO"},
		ClandestineMarker:       "LIGAÇÃO CLANDESTINA",
		DuplicateExcludeZero:    true,
		MeanIgnoreZeroResidents: true,
	}
}

// Column returns the spec for a canonical column name.
func (c Config) Column(name string) (ColumnSpec, bool) {
	for _, spec := range c.Columns {
		if spec.Name == name {
			return spec, true
		}
	}
	return ColumnSpec{}, false
}

// MeterPresent reports whether an uppercased meter-status value counts as
// "meter present".
func (c Config) MeterPresent(upperStatus string) bool {
	for _, v := range c.MeterInstalled {
		if upperStatus == v {
			return true
		}
	}
	return false
}
