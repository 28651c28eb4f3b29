package i18n

import "woodify/internal/domain/model"

var tables = map[model.Language]map[string]string{
	model.LangEN: {
		"nav_home":                  "Home",
		"nav_products":              "Collection",
		"nav_gallery":               "Craftsmanship",
		"nav_about":                 "Our Story",
		"hero_title":                "Artisanal Woodwork, Tailored to You",
		"hero_subtitle":             "Experience the warmth of hand-selected timber, crafted with precision and passion.",
		"cta_quote":                 "Request a Quote",
		"section_collection":        "The Collection",
		"section_collection_sub":    "Explore our curated projects, each handcrafted with soul.",
		"section_bring_vision":      "Bring Your Vision to Life",
		"section_bring_vision_text": "Every piece of wood has a story. Let's write the next chapter together with a custom furniture piece designed specifically for your home and lifestyle.",
		"craft_1":                   "Premium Walnut & Oak",
		"craft_2":                   "Hand-rubbed Natural Finishes",
		"craft_3":                   "Traditional Joinery Techniques",
		"about_title":               "A Legacy of Wood & Soul",
		"about_philosophy":          "Our Philosophy",
		"contact_visit":             "Visit Our Showroom",
		"quote_title":               "Request a Custom Quote",
		"q_name":                    "Name",
		"q_email":                   "Email",
		"q_phone":                   "Phone",
		"q_desc_label":              "Description of your request",
		"q_desc_ph":                 "Tell us about your dream furniture...",
		"q_upload":                  "Upload Inspiration/Sketches",
		"q_upload_sub":              "Click to upload image",
		"q_timeline":                "Desired Timeline",
		"q_t_1":                     "1-2 Weeks",
		"q_t_2":                     "1 Month",
		"q_t_3":                     "Flexible",
		"q_next":                    "Next Step",
		"q_back":                    "Back",
		"q_submit":                  "Submit Request",
		"q_success_title":           "Thank You!",
		"q_success_text":            "Your request has been sent. Our artisans will contact you soon.",
		"q_new":                     "New Request",
		"q_error":                   "Something went wrong. Please try again.",
		"gallery_title":             "Our Masterpieces",
		"gallery_subtitle":          "A showcase of custom projects delivered to happy homes across the globe.",
		"btn_details":               "Check Details",
		"pd_dimensions":             "Dimensions",
		"pd_material":               "Material",
		"pd_finish":                 "Finish",
		"pd_desc":                   "Description",
		"pd_offer_title":            "Interested in this piece?",
		"pd_offer_text":             "Request a custom offer for this item or a similar bespoke creation.",
		"steps_title":               "Your Design Journey",
		"step_1":                    "Consultation",
		"step_2":                    "Design",
		"step_3":                    "Crafting",
		"step_4":                    "Delivery",
		"status_active":             "Active",
		"status_out_of_stock":       "Out of Stock",
	},
	model.LangTR: {
		"nav_home":                  "Ana Sayfa",
		"nav_products":              "Koleksiyon",
		"nav_gallery":               "Ustalık",
		"nav_about":                 "Hikayemiz",
		"hero_title":                "Size Özel, El İşçiliği Ahşap",
		"hero_subtitle":             "Hassasiyet ve tutkuyla işlenmiş, özenle seçilmiş kerestenin sıcaklığını hissedin.",
		"cta_quote":                 "Teklif Alın",
		"section_collection":        "Koleksiyonumuz",
		"section_collection_sub":    "Her biri ruhla işlenmiş küratörlü projelerimizi keşfedin.",
		"section_bring_vision":      "Vizyonunuzu Hayata Geçirin",
		"section_bring_vision_text": "Her ağacın bir hikayesi vardır. Eviniz ve yaşam tarzınız için özel olarak tasarlanmış bir mobilya parçasıyla bir sonraki bölümü birlikte yazalım.",
		"craft_1":                   "Birinci Sınıf Ceviz ve Meşe",
		"craft_2":                   "El ile Uygulanan Doğal Cilalar",
		"craft_3":                   "Geleneksel Doğrama Teknikleri",
		"about_title":               "Ahşap ve Ruhun Mirası",
		"about_philosophy":          "Felsefemiz",
		"contact_visit":             "Mağazamızı Ziyaret Edin",
		"quote_title":               "Özel Teklif İsteyin",
		"q_name":                    "İsim",
		"q_email":                   "E-posta",
		"q_phone":                   "Telefon",
		"q_desc_label":              "Talebinizin Açıklaması",
		"q_desc_ph":                 "Hayalinizdeki mobilyayı bize anlatın...",
		"q_upload":                  "İlham/Eskiz Yükle",
		"q_upload_sub":              "Resim yüklemek için tıklayın",
		"q_timeline":                "İstenilen Zaman Çizelgesi",
		"q_t_1":                     "1-2 Hafta",
		"q_t_2":                     "1 Ay",
		"q_t_3":                     "Esnek",
		"q_next":                    "Sonraki Adım",
		"q_back":                    "Geri",
		"q_submit":                  "Talebi Gönder",
		"q_success_title":           "Teşekkürler!",
		"q_success_text":            "Talebiniz gönderildi. Zanaatkarlarımız yakında sizinle iletişime geçecek.",
		"q_new":                     "Yeni Talep",
		"q_error":                   "Bir şeyler ters gitti. Lütfen tekrar deneyin.",
		"gallery_title":             "Başyapıtlarımız",
		"gallery_subtitle":          "Dünyanın dört bir yanındaki mutlu evlere teslim edilen özel projelerin vitrini.",
		"btn_details":               "Detayları Gör",
		"pd_dimensions":             "Boyutlar",
		"pd_material":               "Malzeme",
		"pd_finish":                 "Cila",
		"pd_desc":                   "Açıklama",
		"pd_offer_title":            "Bu parçayla ilgileniyor musunuz?",
		"pd_offer_text":             "Bu ürün veya benzeri özel tasarım için teklif isteyin.",
		"steps_title":               "Tasarım Yolculuğunuz",
		"step_1":                    "Danışmanlık",
		"step_2":                    "Tasarım",
		"step_3":                    "İşleme",
		"step_4":                    "Teslimat",
		"status_active":             "Aktif",
		"status_out_of_stock":       "Stokta Yok",
	},
}
