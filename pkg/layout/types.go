package layout

// ComponentType tags a node with its component kind. The wire spelling is
// kebab-case and case-insensitive at the definition boundary.
type ComponentType string

// Containers hold an ordered list of children.
const (
	TypeColumn    ComponentType = "column"
	TypeRow       ComponentType = "row"
	TypeStack     ComponentType = "stack"
	TypeGrid      ComponentType = "grid"
	TypeTable     ComponentType = "table"
	TypeTableRow  ComponentType = "table-row"
	TypeTableCell ComponentType = "table-cell"
)

// Content leaves draw something and hold no children. A page break is a
// leaf marker consumed by the paginator.
const (
	TypeText      ComponentType = "text"
	TypeMarkdown  ComponentType = "markdown"
	TypeHTML      ComponentType = "html"
	TypeImage     ComponentType = "image"
	TypeDivider   ComponentType = "divider"
	TypeSpacer    ComponentType = "spacer"
	TypePageBreak ComponentType = "page-break"
)

// Styling wrappers change how their single child is painted.
const (
	TypeStyled           ComponentType = "styled"
	TypePadded           ComponentType = "padded"
	TypeBordered         ComponentType = "bordered"
	TypeBackground       ComponentType = "background"
	TypeOpacity          ComponentType = "opacity"
	TypeDefaultTextStyle ComponentType = "default-text-style"
)

// Sizing wrappers constrain the box their child may occupy.
const (
	TypeSized         ComponentType = "sized"
	TypeConstrained   ComponentType = "constrained"
	TypeAspectRatio   ComponentType = "aspect-ratio"
	TypeExpand        ComponentType = "expand"
	TypeShrink        ComponentType = "shrink"
	TypeUnconstrained ComponentType = "unconstrained"
)

// Transform wrappers apply a geometric transform to their child.
const (
	TypeRotate    ComponentType = "rotate"
	TypeScale     ComponentType = "scale"
	TypeTranslate ComponentType = "translate"
	TypeFlip      ComponentType = "flip"
)

// Flow-control wrappers steer the paginator around their child.
const (
	TypeEnsureSpace  ComponentType = "ensure-space"
	TypeStopPaging   ComponentType = "stop-paging"
	TypeShowOnce     ComponentType = "show-once"
	TypeSkipOnce     ComponentType = "skip-once"
	TypeKeepTogether ComponentType = "keep-together"
)

// Special wrappers attach document semantics to their child.
const (
	TypeSection   ComponentType = "section"
	TypeHyperlink ComponentType = "hyperlink"
	TypeBookmark  ComponentType = "bookmark"
	TypeWatermark ComponentType = "watermark"
	TypeLayer     ComponentType = "layer"
)

// Conditional wrappers keep or drop their child at resolve time.
const (
	TypeShowIf   ComponentType = "show-if"
	TypeHideIf   ComponentType = "hide-if"
	TypeFallback ComponentType = "fallback"
)

// Category groups component types by child shape and role.
type Category string

const (
	CategoryContainer   Category = "container"
	CategoryContent     Category = "content"
	CategoryStyling     Category = "styling-wrapper"
	CategorySizing      Category = "sizing-wrapper"
	CategoryTransform   Category = "transform-wrapper"
	CategoryFlowControl Category = "flow-control-wrapper"
	CategorySpecial     Category = "special-wrapper"
	CategoryConditional Category = "conditional-wrapper"
)

// Shape is the child arrangement a category dictates.
type Shape string

const (
	ShapeChildren Shape = "children"
	ShapeChild    Shape = "child"
	ShapeNone     Shape = "none"
)

// Shape returns the child arrangement for nodes of this category: containers
// hold a list, content leaves hold nothing, every wrapper category holds a
// single child.
func (c Category) Shape() Shape {
	switch c {
	case CategoryContainer:
		return ShapeChildren
	case CategoryContent:
		return ShapeNone
	default:
		return ShapeChild
	}
}

// Descriptor is a registry entry describing one component type.
type Descriptor struct {
	Type     ComponentType
	Category Category
}

// Shape returns the child arrangement nodes of this type must use.
func (d Descriptor) Shape() Shape { return d.Category.Shape() }

// Builtins returns descriptors for every built-in component type, grouped by
// category in declaration order.
func Builtins() []Descriptor {
	return []Descriptor{
		{TypeColumn, CategoryContainer},
		{TypeRow, CategoryContainer},
		{TypeStack, CategoryContainer},
		{TypeGrid, CategoryContainer},
		{TypeTable, CategoryContainer},
		{TypeTableRow, CategoryContainer},
		{TypeTableCell, CategoryContainer},

		{TypeText, CategoryContent},
		{TypeMarkdown, CategoryContent},
		{TypeHTML, CategoryContent},
		{TypeImage, CategoryContent},
		{TypeDivider, CategoryContent},
		{TypeSpacer, CategoryContent},
		{TypePageBreak, CategoryContent},

		{TypeStyled, CategoryStyling},
		{TypePadded, CategoryStyling},
		{TypeBordered, CategoryStyling},
		{TypeBackground, CategoryStyling},
		{TypeOpacity, CategoryStyling},
		{TypeDefaultTextStyle, CategoryStyling},

		{TypeSized, CategorySizing},
		{TypeConstrained, CategorySizing},
		{TypeAspectRatio, CategorySizing},
		{TypeExpand, CategorySizing},
		{TypeShrink, CategorySizing},
		{TypeUnconstrained, CategorySizing},

		{TypeRotate, CategoryTransform},
		{TypeScale, CategoryTransform},
		{TypeTranslate, CategoryTransform},
		{TypeFlip, CategoryTransform},

		{TypeEnsureSpace, CategoryFlowControl},
		{TypeStopPaging, CategoryFlowControl},
		{TypeShowOnce, CategoryFlowControl},
		{TypeSkipOnce, CategoryFlowControl},
		{TypeKeepTogether, CategoryFlowControl},

		{TypeSection, CategorySpecial},
		{TypeHyperlink, CategorySpecial},
		{TypeBookmark, CategorySpecial},
		{TypeWatermark, CategorySpecial},
		{TypeLayer, CategorySpecial},

		{TypeShowIf, CategoryConditional},
		{TypeHideIf, CategoryConditional},
		{TypeFallback, CategoryConditional},
	}
}

var paginationDependent = map[ComponentType]bool{
	TypePageBreak:   true,
	TypeEnsureSpace: true,
	TypeStopPaging:  true,
	TypeShowOnce:    true,
	TypeSkipOnce:    true,
}

// IsPaginationDependent reports whether the component kind only makes sense
// inside the paginating content slot. The set is closed: page-break,
// ensure-space, stop-paging, show-once, skip-once.
func IsPaginationDependent(t ComponentType) bool { return paginationDependent[t] }

// Well-known property bag keys consumed by built-in components.
const (
	PropText   = "text"   // text leaf content
	PropHTML   = "html"   // html leaf content; also receives rendered markdown
	PropSource = "src"    // image source
	PropAlt    = "alt"    // image alternative text
	PropName   = "name"   // section name
	PropTitle  = "title"  // section display title
	PropHref   = "href"   // hyperlink target
	PropHeight = "height" // ensure-space minimum height, spacer height
	PropWhen   = "when"   // show-if and hide-if condition expression
	PropFor    = "for"    // fallback watched expression
)
