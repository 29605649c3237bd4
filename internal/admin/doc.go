// Package admin derives a table view, an edit form and a delete action
// for any registered entity type.
//
// Each type is described once at startup by a Type: an ordered list of
// named fields with typed accessors. Those accessors are the only code
// specific to an entity; everything else is shared:
//
//	albums := admin.NewType("Album",
//		admin.Int("id", admin.KindInteger, func(a *models.Album) int64 { return a.ID }, nil),
//		admin.Str("title", admin.KindString, func(a *models.Album) string { return a.Title },
//			func(a *models.Album, v string) { a.Title = v }),
//	)
//
//	reg := admin.NewRegistrar(renderer, admin.NewGuard(authorizer, principal))
//	admin.Register(reg, albums, albumRepo, forms.UpdateAlbum)
//	admin.Register(reg, users, userRepo, nil) // table and delete only
//
// Registrar.Routes mounts the resulting endpoints:
//
//	GET    /admin/<resource>/      table      admin.<resource>_table
//	GET    /admin/<resource>/{id}  edit form  admin.<resource>
//	POST   /admin/<resource>/{id}  save       admin.<resource>
//	DELETE /admin/<resource>/{id}  delete     admin.<resource>
//
// Every endpoint runs behind the registrar's guard.
package admin
