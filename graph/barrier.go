package graph

import (
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/resource"
)

// accessFor derives the memory-access scope a usage requires, per the
// access_for table.
func accessFor(u Usage, bp BindPoint) driver.Access {
	if bp == BindTransfer {
		if u.IO == IOInput {
			return driver.ACopyRead
		}
		return driver.ACopyWrite
	}

	switch u.Kind {
	case KindBuffer:
		if u.IO == IOInput {
			switch u.BufRole {
			case resource.BufVertex:
				return driver.AVertexBufRead
			case resource.BufIndex:
				return driver.AIndexBufRead
			default: // BufUniform, BufStorage, BufIndirect
				return driver.AShaderRead
			}
		}
		return driver.AShaderWrite
	case KindTexture:
		if u.IO == IOInput {
			if u.isDepthish() {
				return driver.ADSRead
			}
			return driver.AColorRead
		}
		if u.isDepthish() {
			return driver.ADSWrite
		}
		return driver.AColorWrite // color/resolve
	case KindUniform:
		if u.IO == IOInput {
			return driver.AUniformRead
		}
	}
	return driver.ANone
}

// stageFor derives the pipeline stage a given access occurs at, per
// the stage_for table. dstDirection selects the consumer-side arm of
// the asymmetric rows (COLOR_ATTACHMENT_READ, DEPTH_STENCIL_ATTACHMENT
// _READ/WRITE); the direction only matters in the graphics bind
// point, since compute/transfer stages are singular.
//
// The source material distinguishes EARLY_FRAGMENT_TESTS from
// LATE_FRAGMENT_TESTS for depth/stencil access; driver.Sync carries
// one combined SDSOutput scope for both, so this collapses that
// distinction rather than inventing a stage the backend has no way to
// honor.
func stageFor(bp BindPoint, access driver.Access, dstDirection bool) driver.Sync {
	switch bp {
	case BindCompute:
		return driver.SComputeShading
	case BindTransfer:
		return driver.SCopy
	}

	switch access {
	case driver.AVertexBufRead, driver.AIndexBufRead:
		return driver.SVertexInput
	case driver.AColorRead:
		if dstDirection {
			return driver.SColorOutput
		}
		return driver.SFragmentShading
	case driver.AColorWrite:
		return driver.SColorOutput
	case driver.ADSRead:
		if dstDirection {
			return driver.SDSOutput
		}
		return driver.SFragmentShading
	case driver.ADSWrite:
		return driver.SDSOutput
	case driver.AShaderRead, driver.AShaderWrite, driver.AUniformRead:
		return driver.SFragmentShading
	case driver.AHostRead, driver.AHostWrite:
		return driver.SHost
	case driver.AAnyRead, driver.AAnyWrite, driver.ANone:
		if dstDirection {
			return driver.STopOfPipe
		}
		return driver.SBottomOfPipe
	}
	return driver.SAll
}

// layoutFor derives the image layout a usage requires, per the
// layout_for table. Non-texture usages have no layout and return
// LUndefined, which callers must not act on.
//
// The COLOR_ATTACHMENT layout for compute outputs below is preserved
// exactly as named in the material this was distilled from, despite
// reading as unconventional for a storage-image write; flagged rather
// than corrected.
func layoutFor(u Usage, bp BindPoint) driver.Layout {
	if u.Kind != KindTexture {
		return driver.LUndefined
	}
	switch {
	case u.IO == IOInput && bp == BindGraphics && u.isDepthish():
		return driver.LDSRead
	case u.IO == IOInput && bp == BindGraphics:
		return driver.LShaderRead
	case u.IO == IOInput && bp == BindCompute:
		return driver.LShaderRead
	case u.IO == IOInput && bp == BindTransfer:
		return driver.LCopySrc
	case u.IO == IOOutput && bp == BindGraphics && u.isDepthish():
		return driver.LDSTarget
	case u.IO == IOOutput && bp == BindGraphics:
		return driver.LColorTarget // color/resolve
	case u.IO == IOOutput && bp == BindCompute:
		return driver.LColorTarget
	case u.IO == IOOutput && bp == BindTransfer:
		return driver.LCopyDst
	}
	return driver.LUndefined
}
