package feasibility

import (
	"github.com/ervinstupac-byte/anohubsapp-sub009/hydro-kernel/internal/models"

	"go.uber.org/zap"
)

// 各机型最高效率理论上限（%）
var efficiencyCeiling = map[models.TurbineFamily]float64{
	models.TurbineFrancis:   95.5,
	models.TurbineKaplan:    94.5,
	models.TurbinePelton:    92.5,
	models.TurbineCrossflow: 88.0,
}

// 投标扣分规则
const (
	PenaltyEfficiency   = 20
	PenaltyKaplanHigh   = 30
	PenaltyFrancisLow   = 15
	PenaltyPeltonLow    = 15
	PenaltyPriceTooLow  = 10
	KaplanMaxHead       = 70.0
	FrancisMinHead      = 20.0
	PeltonMinHead       = 60.0
	MarketPricePerMW    = 1000000.0
	LowPriceRatio       = 0.6
	RealisticScoreAbove = 70
	ShortlistAbove      = 80
	NegotiateAbove      = 50
)

// BidVerdict 投标结论
type BidVerdict string

const (
	VerdictShortlist BidVerdict = "SHORTLIST"
	VerdictNegotiate BidVerdict = "NEGOTIATE"
	VerdictReject    BidVerdict = "REJECT"
)

// Bid 设备投标
type Bid struct {
	Manufacturer          string               `json:"manufacturer"`
	TurbineType           models.TurbineFamily `json:"turbine_type"`
	RatedPowerMW          float64              `json:"rated_power_mw"`
	EfficiencyAtBestPoint float64              `json:"efficiency_at_best_point"` // %
	RunnerDiameterMM      float64              `json:"runner_diameter_mm"`
	Price                 float64              `json:"price"`
	GuaranteeIncluded     bool                 `json:"guarantee_included"`
}

// BidEvaluation 投标评估结果
type BidEvaluation struct {
	IsRealistic    bool       `json:"is_realistic"`
	Risks          []Warning  `json:"risks"`
	EfficiencyGap  float64    `json:"efficiency_gap"`
	Score          int        `json:"score"`
	Recommendation BidVerdict `json:"recommendation"`
}

// EvaluateBid 按物理上限与应用范围核查厂家承诺
func (e *Engine) EvaluateBid(bid Bid, site models.SiteParameters) BidEvaluation {
	risks := []Warning{}
	score := 100
	gap := 0.0

	family := models.ParseTurbineFamily(string(bid.TurbineType))
	if ceiling, ok := efficiencyCeiling[family]; ok {
		if bid.EfficiencyAtBestPoint > ceiling {
			gap = bid.EfficiencyAtBestPoint - ceiling
			score -= PenaltyEfficiency
			risks = append(risks, Warning{
				Key:    "bid_efficiency_above_ceiling",
				Params: map[string]interface{}{"claimed": bid.EfficiencyAtBestPoint, "ceiling": ceiling},
			})
		}
	} else {
		e.logger.Warn("Bid turbine type has no efficiency ceiling",
			zap.String("manufacturer", bid.Manufacturer),
			zap.String("turbine_type", string(bid.TurbineType)),
		)
	}

	head := site.GrossHead
	switch {
	case family == models.TurbineKaplan && head > KaplanMaxHead:
		score -= PenaltyKaplanHigh
		risks = append(risks, Warning{Key: "bid_kaplan_high_head", Params: map[string]interface{}{"head": head}})
	case family == models.TurbineFrancis && head < FrancisMinHead:
		score -= PenaltyFrancisLow
		risks = append(risks, Warning{Key: "bid_francis_low_head", Params: map[string]interface{}{"head": head}})
	case family == models.TurbinePelton && head < PeltonMinHead:
		score -= PenaltyPeltonLow
		risks = append(risks, Warning{Key: "bid_pelton_low_head", Params: map[string]interface{}{"head": head}})
	}

	estimate := bid.RatedPowerMW * MarketPricePerMW
	if bid.Price < estimate*LowPriceRatio {
		score -= PenaltyPriceTooLow
		risks = append(risks, Warning{
			Key:    "bid_price_below_market",
			Params: map[string]interface{}{"price": bid.Price, "estimate": estimate},
		})
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	verdict := VerdictReject
	switch {
	case score > ShortlistAbove:
		verdict = VerdictShortlist
	case score > NegotiateAbove:
		verdict = VerdictNegotiate
	}

	return BidEvaluation{
		IsRealistic:    score > RealisticScoreAbove,
		Risks:          risks,
		EfficiencyGap:  gap,
		Score:          score,
		Recommendation: verdict,
	}
}
