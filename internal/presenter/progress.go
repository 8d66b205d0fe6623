package presenter

import "github.com/ad/go-portfolio-admin/internal/models"

const descriptionPreview = 50

var fieldLabels = map[models.Field]string{
	models.FieldTitle:       "Название",
	models.FieldDescription: "Описание",
	models.FieldProjectURL:  "Ссылка на проект",
	models.FieldImage:       "Изображение",
}

func FieldLabel(field models.Field) string {
	return fieldLabels[field]
}

// Progress renders the add-project checklist. Fields are listed in flow order
// and the list stops at the first unresolved field, which is marked as
// waiting when it is the one being asked for.
func Progress(fields map[models.Field]*string, waiting models.Field) *Caption {
	c := NewCaption().Bold("➕ Добавление нового проекта").Line().Line()

	for _, field := range models.ProjectFields {
		value, resolved := fields[field]
		if !resolved {
			if field == waiting {
				c.Text("⏳ " + FieldLabel(field) + ": ")
				if field == models.FieldImage {
					c.Italic("ожидание загрузки")
				} else {
					c.Italic("ожидание ввода")
				}
				c.Line()
			}
			break
		}

		c.Text("✅ " + FieldLabel(field) + ": ")
		switch {
		case value == nil:
			c.Italic("пропущено")
		case field == models.FieldDescription:
			c.Text(Truncate(*value, descriptionPreview))
		default:
			c.Text(*value)
		}
		c.Line()
	}

	return c
}
