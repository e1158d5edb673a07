package marketplace

import (
	"fmt"
)

// Factory creates marketplace providers based on type
type Factory struct {
	opts []Option
}

// NewFactory creates a new marketplace factory whose providers share opts
func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: opts}
}

// CreateByType creates a marketplace provider by type
func (f *Factory) CreateByType(marketplaceType MarketplaceType) (MarketplaceProvider, error) {
	switch marketplaceType {
	case MarketplaceTypeMicrosoft, "":
		m, err := New(f.opts...)
		if err != nil {
			return nil, err
		}
		return m, nil
	case MarketplaceTypeOpenVSX:
		m, err := NewOpenVSX(f.opts...)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown marketplace type: %s", marketplaceType)
	}
}
