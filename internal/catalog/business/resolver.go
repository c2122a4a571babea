package business

import "gomarketplace_ingest/internal/catalog/models"

// productIndex - справочники одного товара, построенные один раз перед записью.
type productIndex struct {
	params         map[int64]models.RawParam
	aspects        map[int64]models.RawAspect
	aspectOrder    []int64
	paramsByAspect map[int64][]models.RawParam
	paramValues    map[int64]string
}

func newProductIndex(p *models.RawProduct) *productIndex {
	ix := &productIndex{
		params:         make(map[int64]models.RawParam, len(p.Params)),
		aspects:        make(map[int64]models.RawAspect, len(p.Aspects)),
		paramsByAspect: make(map[int64][]models.RawParam),
		paramValues:    make(map[int64]string, len(p.ParamValues)),
	}
	for _, a := range p.Aspects {
		if _, seen := ix.aspects[a.ID]; seen {
			continue
		}
		ix.aspects[a.ID] = a
		ix.aspectOrder = append(ix.aspectOrder, a.ID)
	}
	for _, param := range p.Params {
		if _, seen := ix.params[param.ID]; !seen {
			ix.params[param.ID] = param
		}
		ix.paramsByAspect[param.AspectID] = append(ix.paramsByAspect[param.AspectID], param)
	}
	// первое значение для параметра побеждает
	for _, pv := range p.ParamValues {
		if _, seen := ix.paramValues[pv.ParamID]; !seen {
			ix.paramValues[pv.ParamID] = pv.Value
		}
	}
	return ix
}

// resolveValue: explicit param value, then the param's own value, then its name.
func (ix *productIndex) resolveValue(param models.RawParam) string {
	if v, ok := ix.paramValues[param.ID]; ok {
		return v
	}
	if param.Value != nil {
		return *param.Value
	}
	return param.Name
}

// productAttributes walks aspects in payload order and their params in payload order.
// Params whose aspect is unknown produce no product attribute.
func (ix *productIndex) productAttributes(productID int64) []models.Attribute {
	var attrs []models.Attribute
	for _, aspectID := range ix.aspectOrder {
		aspect := ix.aspects[aspectID]
		for _, param := range ix.paramsByAspect[aspectID] {
			attrs = append(attrs, models.Attribute{
				OwnerID:   productID,
				Name:      param.Name,
				Value:     ix.resolveValue(param),
				GroupName: aspect.AspectGroup,
			})
		}
	}
	return attrs
}

// variationAttributes resolves the variation's param ids. Ids without a param or without an aspect
// are returned in skipped.
func (ix *productIndex) variationAttributes(v models.RawVariation) (attrs []models.Attribute, skipped []int64) {
	for _, paramID := range v.ParamIDs {
		param, ok := ix.params[paramID]
		if !ok {
			skipped = append(skipped, paramID)
			continue
		}
		aspect, ok := ix.aspects[param.AspectID]
		if !ok {
			skipped = append(skipped, paramID)
			continue
		}
		attrs = append(attrs, models.Attribute{
			OwnerID:   v.ID,
			Name:      param.Name,
			Value:     ix.resolveValue(param),
			GroupName: aspect.AspectGroup,
		})
	}
	return attrs, skipped
}
