package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
	"time"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Namespaces shared by the PresentationML parts.
const nsPML = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

// Relationship types.
const (
	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relPresProps      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps"
	relViewProps      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/viewProps"
	relTableStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/tableStyles"
	relImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// First IDs PowerPoint accepts for slides and masters.
const (
	firstSlideID  = 256
	masterID      = 2147483648
	layoutID      = 2147483649
	notesWidthEMU = 6858000
	notesHeighEMU = 9144000
)

type part struct {
	name   string
	data   []byte
	stored bool // already compressed content (PNG)
}

type relationship struct {
	ID     string
	Type   string
	Target string
}

var funcs = template.FuncMap{"esc": escape}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

var (
	contentTypesTmpl = template.Must(template.New("ct").Parse(xmlHeader +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>` +
		`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>` +
		`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>` +
		`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>` +
		`<Override PartName="/ppt/presProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"/>` +
		`<Override PartName="/ppt/viewProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"/>` +
		`<Override PartName="/ppt/tableStyles.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"/>` +
		`{{range .}}<Override PartName="/ppt/slides/slide{{.}}.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>{{end}}` +
		`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
		`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
		`</Types>`))

	relsTmpl = template.Must(template.New("rels").Parse(xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`{{range .}}<Relationship Id="{{.ID}}" Type="{{.Type}}" Target="{{.Target}}"/>{{end}}` +
		`</Relationships>`))

	coreTmpl = template.Must(template.New("core").Funcs(funcs).Parse(xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>{{esc .Title}}</dc:title><dc:creator>{{esc .Creator}}</dc:creator>` +
		`<cp:lastModifiedBy>{{esc .Creator}}</cp:lastModifiedBy>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">{{.Created}}</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">{{.Created}}</dcterms:modified>` +
		`</cp:coreProperties>`))

	appTmpl = template.Must(template.New("app").Funcs(funcs).Parse(xmlHeader +
		`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" ` +
		`xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
		`<Application>{{esc .Creator}}</Application><PresentationFormat>Custom</PresentationFormat>` +
		`<Slides>{{.Count}}</Slides><Notes>0</Notes><HiddenSlides>0</HiddenSlides>` +
		`</Properties>`))

	presentationTmpl = template.Must(template.New("pres").Parse(xmlHeader +
		`<p:presentation ` + nsPML + ` saveSubsetFonts="1">` +
		`<p:sldMasterIdLst><p:sldMasterId id="{{.MasterID}}" r:id="rId1"/></p:sldMasterIdLst>` +
		`<p:sldIdLst>{{range .Slides}}<p:sldId id="{{.ID}}" r:id="{{.RelID}}"/>{{end}}</p:sldIdLst>` +
		`<p:sldSz cx="{{.Width}}" cy="{{.Height}}"/>` +
		`<p:notesSz cx="{{.NotesWidth}}" cy="{{.NotesHeight}}"/>` +
		`</p:presentation>`))

	slideTmpl = template.Must(template.New("slide").Funcs(funcs).Parse(xmlHeader +
		`<p:sld ` + nsPML + `>` +
		`<p:cSld name="{{esc .Name}}"><p:spTree>` + groupShape +
		`<p:pic><p:nvPicPr><p:cNvPr id="2" name="Slide {{.Number}}" descr="{{esc .Name}}"/>` +
		`<p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>` +
		`<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>` +
		`<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="{{.Width}}" cy="{{.Height}}"/></a:xfrm>` +
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>` +
		`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`))
)

// groupShape is the mandatory root group of every shape tree.
const groupShape = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/>` +
	`<a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

var slideMasterXML = xmlHeader +
	`<p:sldMaster ` + nsPML + `>` +
	`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>` +
	`<p:spTree>` + groupShape + `</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" ` +
	`accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	fmt.Sprintf(`<p:sldLayoutIdLst><p:sldLayoutId id="%d" r:id="rId1"/></p:sldLayoutIdLst>`, layoutID) +
	`<p:txStyles><p:titleStyle/><p:bodyStyle/><p:otherStyle/></p:txStyles>` +
	`</p:sldMaster>`

var slideLayoutXML = xmlHeader +
	`<p:sldLayout ` + nsPML + ` type="blank" preserve="1">` +
	`<p:cSld name="Blank"><p:spTree>` + groupShape + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`

var presPropsXML = xmlHeader + `<p:presentationPr ` + nsPML + `/>`

var viewPropsXML = xmlHeader + `<p:viewPr ` + nsPML + `>` +
	`<p:normalViewPr><p:restoredLeft sz="15620"/><p:restoredTop sz="94660"/></p:normalViewPr>` +
	`<p:gridSpacing cx="76200" cy="76200"/></p:viewPr>`

var tableStylesXML = xmlHeader +
	`<a:tblStyleLst xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" def="{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"/>`

// themeXML is the smallest theme PowerPoint opens without repair: a full
// color scheme, font scheme and three entries per format style list.
var themeXML = xmlHeader +
	`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office Theme"><a:themeElements>` +
	`<a:clrScheme name="Office">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
	`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="44546A"/></a:dk2><a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4472C4"/></a:accent1><a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3><a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5><a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0563C1"/></a:hlink><a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Office">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Office">` +
	`<a:fillStyleLst>` + strings.Repeat(`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`, 3) + `</a:fillStyleLst>` +
	`<a:lnStyleLst>` + strings.Repeat(`<a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>`, 3) + `</a:lnStyleLst>` +
	`<a:effectStyleLst>` + strings.Repeat(`<a:effectStyle><a:effectLst/></a:effectStyle>`, 3) + `</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` + strings.Repeat(`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`, 3) + `</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements><a:objectDefaults/><a:extraClrSchemeLst/></a:theme>`

func render(t *template.Template, data any) []byte {
	var buf bytes.Buffer
	// Templates are static and data is plain values; execution cannot fail.
	if err := t.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("pptx: template %s: %v", t.Name(), err))
	}
	return buf.Bytes()
}

// parts returns every package part, [Content_Types].xml first.
func (p *Presentation) parts(created time.Time) []part {
	n := len(p.Slides)
	numbers := make([]int, n)
	for i := range numbers {
		numbers[i] = i + 1
	}

	type slideRef struct {
		ID    int
		RelID string
	}
	refs := make([]slideRef, n)
	presRels := []relationship{{ID: "rId1", Type: relSlideMaster, Target: "slideMasters/slideMaster1.xml"}}
	for i := range p.Slides {
		relID := fmt.Sprintf("rId%d", i+2)
		refs[i] = slideRef{ID: firstSlideID + i, RelID: relID}
		presRels = append(presRels, relationship{ID: relID, Type: relSlide, Target: fmt.Sprintf("slides/slide%d.xml", i+1)})
	}
	next := n + 2
	for _, r := range []struct{ typ, target string }{
		{relPresProps, "presProps.xml"},
		{relViewProps, "viewProps.xml"},
		{relTheme, "theme/theme1.xml"},
		{relTableStyles, "tableStyles.xml"},
	} {
		presRels = append(presRels, relationship{ID: fmt.Sprintf("rId%d", next), Type: r.typ, Target: r.target})
		next++
	}

	meta := struct {
		Title, Creator, Created string
		Count                   int
	}{p.Title, p.Creator, created.Format(time.RFC3339), n}

	parts := []part{
		{name: "[Content_Types].xml", data: render(contentTypesTmpl, numbers)},
		{name: "_rels/.rels", data: render(relsTmpl, []relationship{
			{ID: "rId1", Type: relOfficeDocument, Target: "ppt/presentation.xml"},
			{ID: "rId2", Type: relCoreProps, Target: "docProps/core.xml"},
			{ID: "rId3", Type: relExtendedProps, Target: "docProps/app.xml"},
		})},
		{name: "docProps/core.xml", data: render(coreTmpl, meta)},
		{name: "docProps/app.xml", data: render(appTmpl, meta)},
		{name: "ppt/presentation.xml", data: render(presentationTmpl, struct {
			MasterID                int64
			Slides                  []slideRef
			Width, Height           int64
			NotesWidth, NotesHeight int64
		}{masterID, refs, p.Width, p.Height, notesWidthEMU, notesHeighEMU})},
		{name: "ppt/_rels/presentation.xml.rels", data: render(relsTmpl, presRels)},
		{name: "ppt/slideMasters/slideMaster1.xml", data: []byte(slideMasterXML)},
		{name: "ppt/slideMasters/_rels/slideMaster1.xml.rels", data: render(relsTmpl, []relationship{
			{ID: "rId1", Type: relSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
			{ID: "rId2", Type: relTheme, Target: "../theme/theme1.xml"},
		})},
		{name: "ppt/slideLayouts/slideLayout1.xml", data: []byte(slideLayoutXML)},
		{name: "ppt/slideLayouts/_rels/slideLayout1.xml.rels", data: render(relsTmpl, []relationship{
			{ID: "rId1", Type: relSlideMaster, Target: "../slideMasters/slideMaster1.xml"},
		})},
		{name: "ppt/theme/theme1.xml", data: []byte(themeXML)},
		{name: "ppt/presProps.xml", data: []byte(presPropsXML)},
		{name: "ppt/viewProps.xml", data: []byte(viewPropsXML)},
		{name: "ppt/tableStyles.xml", data: []byte(tableStylesXML)},
	}

	for i, s := range p.Slides {
		num := i + 1
		parts = append(parts,
			part{name: fmt.Sprintf("ppt/slides/slide%d.xml", num), data: render(slideTmpl, struct {
				Name          string
				Number        int
				Width, Height int64
			}{s.Name, num, p.Width, p.Height})},
			part{name: fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num), data: render(relsTmpl, []relationship{
				{ID: "rId1", Type: relSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
				{ID: "rId2", Type: relImage, Target: fmt.Sprintf("../media/image%d.png", num)},
			})},
			part{name: fmt.Sprintf("ppt/media/image%d.png", num), data: s.Image, stored: true},
		)
	}
	return parts
}
